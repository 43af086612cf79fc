package models

import (
	"github.com/shopspring/decimal"
)

// BookingPayload is the body of one persistence call, one per active leg.
// It is derived at booking time and never stored by the core itself.
type BookingPayload struct {
	UserID      string          `json:"user_id"`
	UserEmail   string          `json:"user_email"`
	UserName    string          `json:"user_name"`
	FlightID    string          `json:"flight_id"`
	PaymentID   string          `json:"payment_id"`
	Passengers  Roster          `json:"passengers"`
	TravelClass string          `json:"travel_class"`
	FlightFrom  string          `json:"flight_from"`
	FlightTo    string          `json:"flight_to"`
	FlightDate  string          `json:"flight_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`

	// Leg is sequencing context, not part of the wire payload.
	Leg Leg `json:"-"`
}

type OutcomeStatus string

const (
	OutcomeSucceeded       OutcomeStatus = "succeeded"
	OutcomePartiallyBooked OutcomeStatus = "partially_booked"
	OutcomeFailed          OutcomeStatus = "failed"
)

// LegResult is the per-leg record of a booking sequence.
type LegResult struct {
	Leg       Leg    `json:"leg"`
	Confirmed bool   `json:"confirmed"`
	BookingID string `json:"booking_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

// BookingOutcome aggregates a full sequence run. PartiallyBooked means at
// least one leg persisted after payment was authorized and a later leg did
// not; the caller directs the user to support instead of retrying.
type BookingOutcome struct {
	Status  OutcomeStatus `json:"status"`
	Legs    []LegResult   `json:"legs"`
	Message string        `json:"message"`
}

// ConfirmedLegs lists the legs that were durably persisted.
func (o BookingOutcome) ConfirmedLegs() []Leg {
	var out []Leg
	for _, lr := range o.Legs {
		if lr.Confirmed {
			out = append(out, lr.Leg)
		}
	}
	return out
}
