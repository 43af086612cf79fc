package status

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrScriptLoadFailed is fatal for the current checkout attempt; the
	// hosted checkout loader could not be fetched. Never retried automatically.
	ErrScriptLoadFailed = errors.New("authorization: checkout script failed to load")

	// ErrReceiptConsumed rejects a second completion for an attempt that
	// already resolved. One receipt maps to exactly one booking sequence.
	ErrReceiptConsumed = errors.New("authorization: receipt already consumed")

	// ErrRosterLocked rejects roster edits while a payment attempt is in flight.
	ErrRosterLocked = errors.New("roster: locked by an active checkout attempt")

	ErrSessionNotFound = errors.New("session: checkout session not found")
	ErrAttemptNotFound = errors.New("checkout: attempt not found")
)

// ValidationReason classifies a readiness failure. Payment is never
// initiated when one of these is returned.
type ValidationReason string

const (
	IncompletePassengerData ValidationReason = "incomplete_passenger_data"
	MissingContext          ValidationReason = "missing_context"
	NonPositiveFare         ValidationReason = "non_positive_fare"
)

// ValidationError is a pre-payment gate failure, recovered locally and
// surfaced as a blocking user-facing message.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Reason, e.Message)
}

// ConstructionReason classifies a booking payload that cannot be built.
type ConstructionReason string

const (
	MissingFlightDate  ConstructionReason = "missing_flight_date"
	NonPositiveLegFare ConstructionReason = "non_positive_leg_fare"
)

// BookingConstructionError is raised before any persistence call is made.
// The payment for the attempt has already been authorized at this point,
// so the caller must surface it distinctly from a persistence failure.
type BookingConstructionError struct {
	Leg     string
	Reason  ConstructionReason
	Message string
}

func (e *BookingConstructionError) Error() string {
	return fmt.Sprintf("booking construction: %s leg: %s: %s", e.Leg, e.Reason, e.Message)
}

// PersistenceError reports one failed leg submission. PriorConfirmed
// carries the legs that were already durably stored before the failure,
// which is what distinguishes a partially booked itinerary from a total
// failure in the surfaced message.
type PersistenceError struct {
	Leg            string
	StatusCode     int
	Message        string
	PriorConfirmed []string
}

func (e *PersistenceError) Error() string {
	if len(e.PriorConfirmed) > 0 {
		return fmt.Sprintf("persistence: %s leg failed (status %d): %s; already booked: %s",
			e.Leg, e.StatusCode, e.Message, strings.Join(e.PriorConfirmed, ", "))
	}
	return fmt.Sprintf("persistence: %s leg failed (status %d): %s", e.Leg, e.StatusCode, e.Message)
}

// PartiallyBooked reports whether at least one but not all legs persisted.
func (e *PersistenceError) PartiallyBooked() bool {
	return len(e.PriorConfirmed) > 0
}

// Receipt is the opaque proof of a completed external payment. Produced
// exactly once per successful checkout, consumed exactly once to stamp
// every leg's booking payload with the same payment id.
type Receipt struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Signature string `json:"signature"`
}

// CheckoutForm carries everything a gateway needs to open a hosted
// checkout. Amount is in minor currency units.
type CheckoutForm struct {
	AmountMinor  int64
	Currency     string
	Name         string
	Description  string
	PrefillName  string
	PrefillEmail string
	Notes        map[string]string
	Reference    string
}
