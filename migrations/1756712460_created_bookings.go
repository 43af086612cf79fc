package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("bookings")

		collection.Fields.Add(
			&core.TextField{Name: "user_id", Required: true},
			&core.TextField{Name: "user_email"},
			&core.TextField{Name: "user_name"},
			&core.TextField{Name: "flight_id", Required: true},
			&core.TextField{Name: "payment_id", Required: true},
			&core.JSONField{Name: "passengers"},
			&core.TextField{Name: "travel_class"},
			&core.TextField{Name: "flight_from"},
			&core.TextField{Name: "flight_to"},
			&core.TextField{Name: "flight_date"},
			&core.TextField{Name: "total_amount"},
			&core.SelectField{Name: "status", Values: []string{"confirmed", "cancelled"}},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_bookings_user", false, "`user_id`", "")
		collection.AddIndex("idx_bookings_payment", false, "`payment_id`", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("bookings")
		if err != nil {
			return nil
		}
		return app.Delete(collection)
	})
}
