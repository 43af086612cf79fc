package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("flights")

		collection.Fields.Add(
			&core.TextField{Name: "flight_number", Required: true},
			&core.TextField{Name: "from", Required: true},
			&core.TextField{Name: "to", Required: true},
			&core.TextField{Name: "journey_date"},
			&core.SelectField{Name: "travel_class", Values: []string{"economy", "business", "first"}},
			&core.NumberField{Name: "fare"},
			&core.NumberField{Name: "adult_fare"},
			&core.NumberField{Name: "infant_fare"},
			&core.BoolField{Name: "active"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_flights_route", false, "`from`, `to`", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("flights")
		if err != nil {
			return nil
		}
		return app.Delete(collection)
	})
}
