package models

import (
	"time"
)

// AttemptState is the explicit per-attempt machine replacing the
// original's independent modal/processing flags. Exactly one state holds
// at a time; Succeeded, PartiallyBooked, Failed and Abandoned are terminal.
type AttemptState string

const (
	StateIdle            AttemptState = "idle"
	StateValidating      AttemptState = "validating"
	StateScriptLoading   AttemptState = "script_loading"
	StateAuthorizing     AttemptState = "authorizing" // widget open, waiting on the completion handler
	StateBooking         AttemptState = "booking"
	StateSucceeded       AttemptState = "succeeded"
	StatePartiallyBooked AttemptState = "partially_booked"
	StateFailed          AttemptState = "failed"
	StateAbandoned       AttemptState = "abandoned"
)

// Terminal reports whether the attempt can no longer change state.
func (s AttemptState) Terminal() bool {
	switch s {
	case StateSucceeded, StatePartiallyBooked, StateFailed, StateAbandoned:
		return true
	}
	return false
}

// CheckoutAttempt is one run of the validate → authorize → book pipeline.
// Snapshot is the roster copied before the widget opens; the booking
// sequencer reads only the snapshot, never the live roster.
type CheckoutAttempt struct {
	ID          string       `json:"id"`
	SessionID   string       `json:"session_id"`
	UserID      string       `json:"user_id"`
	State       AttemptState `json:"state"`
	AmountMinor int64        `json:"amount_minor"`
	Currency    string       `json:"currency"`
	OrderID     string       `json:"order_id,omitempty"`
	PaymentID   string       `json:"payment_id,omitempty"`
	Snapshot    Roster       `json:"snapshot,omitempty"`
	Legs        []LegResult  `json:"legs,omitempty"`
	Message     string       `json:"message,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
