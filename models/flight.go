package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Leg is one directional segment of an itinerary.
type Leg string

const (
	LegOutbound Leg = "outbound"
	LegReturn   Leg = "return"
)

// Flight is a read-only snapshot supplied by the flight-selection
// collaborator. The core never mutates it.
type Flight struct {
	FlightID     string          `json:"flight_id"`
	FlightNumber string          `json:"flight_number"`
	From         string          `json:"from"`
	To           string          `json:"to"`
	Date         string          `json:"date,omitempty"`
	JourneyDate  string          `json:"journey_date,omitempty"`
	TravelClass  string          `json:"travel_class"`
	Fare         decimal.Decimal `json:"fare"` // flat per-seat fare, one-way only
}

// TravelDate prefers journey_date over date, like the selection store does.
func (f Flight) TravelDate() string {
	if strings.TrimSpace(f.JourneyDate) != "" {
		return f.JourneyDate
	}
	return f.Date
}

// ClassOrDefault falls back to economy when the snapshot has no class.
func (f Flight) ClassOrDefault() string {
	if strings.TrimSpace(f.TravelClass) == "" {
		return "economy"
	}
	return f.TravelClass
}

// FareTable maps a passenger type to a per-seat price for one leg.
// Used only on round-trip itineraries.
type FareTable map[PassengerType]decimal.Decimal

// Lookup resolves a missing tier to zero instead of failing. A malformed
// fare table therefore degrades to free fares; the readiness validator
// catches the non-positive grand total before money moves.
func (t FareTable) Lookup(pt PassengerType) decimal.Decimal {
	if t == nil {
		return decimal.Zero
	}
	if fare, ok := t[pt]; ok {
		return fare
	}
	return decimal.Zero
}

// Itinerary is the externally supplied trip context: the mode switch, the
// chosen flights and the fare source for each leg.
type Itinerary struct {
	RoundTrip     bool      `json:"round_trip"`
	Outbound      *Flight   `json:"outbound"`
	Return        *Flight   `json:"return,omitempty"`
	OutboundFares FareTable `json:"outbound_fares,omitempty"`
	ReturnFares   FareTable `json:"return_fares,omitempty"`
}

// ActiveLegs lists the legs a booking sequence must persist, in submission
// order. A one-way itinerary never includes the return leg, even when a
// return flight object is present.
func (it Itinerary) ActiveLegs() []Leg {
	legs := []Leg{LegOutbound}
	if it.RoundTrip && it.Return != nil {
		legs = append(legs, LegReturn)
	}
	return legs
}

// FlightFor returns the flight snapshot serving a leg, or nil.
func (it Itinerary) FlightFor(leg Leg) *Flight {
	if leg == LegReturn {
		return it.Return
	}
	return it.Outbound
}
