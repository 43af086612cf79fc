package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"flight-booking/models"
)

func roundTripItinerary() models.Itinerary {
	return models.Itinerary{
		RoundTrip: true,
		Outbound:  &models.Flight{FlightID: "f1", FlightNumber: "AI101", From: "DEL", To: "BOM", JourneyDate: "2026-10-01"},
		Return:    &models.Flight{FlightID: "f2", FlightNumber: "AI102", From: "BOM", To: "DEL", JourneyDate: "2026-10-08"},
		OutboundFares: models.FareTable{
			models.PassengerAdult: decimal.NewFromInt(1000),
		},
		ReturnFares: models.FareTable{
			models.PassengerAdult: decimal.NewFromInt(1200),
		},
	}
}

func twoAdults() models.Roster {
	return models.Roster{
		{Name: "Asha Rao", Age: "30", Gender: "female", PassengerType: models.PassengerAdult},
		{Name: "Ravi Rao", Age: "34", Gender: "male", PassengerType: models.PassengerAdult},
	}
}

func TestFareService_RoundTripTotals(t *testing.T) {
	fares := NewFareService()
	it := roundTripItinerary()
	roster := twoAdults()

	assert.True(t, decimal.NewFromInt(2000).Equal(fares.LegTotal(it, roster, models.LegOutbound)))
	assert.True(t, decimal.NewFromInt(2400).Equal(fares.LegTotal(it, roster, models.LegReturn)))
	assert.True(t, decimal.NewFromInt(4400).Equal(fares.GrandTotal(it, roster)))
	assert.Equal(t, int64(440000), fares.GrandTotalMinorUnits(it, roster))
}

func TestFareService_OneWayFlatFare(t *testing.T) {
	fares := NewFareService()
	it := models.Itinerary{
		RoundTrip: false,
		Outbound: &models.Flight{
			FlightID: "f1", FlightNumber: "AI101", JourneyDate: "2026-10-01",
			Fare: decimal.NewFromInt(1500),
		},
	}
	roster := models.Roster{
		{Name: "Meera Rao", Age: "3", Gender: "female", PassengerType: models.PassengerInfant},
	}

	// one-way charges the flat fare regardless of passenger type
	assert.True(t, decimal.NewFromInt(1500).Equal(fares.FareFor(it, roster[0], models.LegOutbound)))
	assert.True(t, decimal.Zero.Equal(fares.FareFor(it, roster[0], models.LegReturn)))
	assert.True(t, decimal.NewFromInt(1500).Equal(fares.GrandTotal(it, roster)))
	assert.Equal(t, int64(150000), fares.GrandTotalMinorUnits(it, roster))
}

func TestFareService_MinorUnitsRoundSubUnitPrecision(t *testing.T) {
	fares := NewFareService()
	it := models.Itinerary{
		RoundTrip: false,
		Outbound: &models.Flight{
			FlightID: "f1", FlightNumber: "AI101", JourneyDate: "2026-10-01",
			Fare: decimal.RequireFromString("10.005"),
		},
	}
	roster := models.Roster{
		{Name: "Asha Rao", Age: "30", Gender: "female", PassengerType: models.PassengerAdult},
	}

	// 10.005 is 1000.5 paise; half rounds away from zero, never truncates
	assert.Equal(t, int64(1001), fares.GrandTotalMinorUnits(it, roster))
}

func TestFareService_MissingTierIsZero(t *testing.T) {
	fares := NewFareService()
	it := roundTripItinerary()
	it.ReturnFares = nil

	roster := twoAdults()

	assert.True(t, decimal.Zero.Equal(fares.LegTotal(it, roster, models.LegReturn)))
	assert.True(t, decimal.NewFromInt(2000).Equal(fares.GrandTotal(it, roster)))
}

func TestFareService_GrandTotalMatchesLegSum(t *testing.T) {
	fares := NewFareService()
	it := roundTripItinerary()
	it.OutboundFares[models.PassengerInfant] = decimal.NewFromInt(250)
	it.ReturnFares[models.PassengerInfant] = decimal.NewFromInt(300)

	roster := append(twoAdults(), models.Passenger{
		Name: "Meera Rao", Age: "2", Gender: "female", PassengerType: models.PassengerInfant,
	})

	want := fares.LegTotal(it, roster, models.LegOutbound).
		Add(fares.LegTotal(it, roster, models.LegReturn))
	assert.True(t, want.Equal(fares.GrandTotal(it, roster)))
}
