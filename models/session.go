package models

import (
	"time"
)

// CheckoutSession holds one traveler's in-progress booking state: who is
// paying, the itinerary snapshot and the passenger roster. It lives in
// Redis under a TTL; an expired session loses the roster and any pending
// authorization, which is accepted behavior rather than a defect.
type CheckoutSession struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	UserEmail  string    `json:"user_email"`
	UserName   string    `json:"user_name"`
	Itinerary  Itinerary `json:"itinerary"`
	Passengers Roster    `json:"passengers"`

	// ActiveAttemptID locks the roster while a payment attempt is in
	// flight, so a late edit cannot race payload construction.
	ActiveAttemptID string    `json:"active_attempt_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Locked reports whether roster edits are currently rejected.
func (s *CheckoutSession) Locked() bool {
	return s.ActiveAttemptID != ""
}
