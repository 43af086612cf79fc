package services

import (
	"fmt"

	"flight-booking/internal/status"
	"flight-booking/models"
)

// ReadinessValidator is the pre-payment gate. It runs only when payment is
// requested and short-circuits on the first failing check; on failure the
// caller must not open the checkout widget.
type ReadinessValidator struct {
	fares *FareService
}

func NewReadinessValidator(fares *FareService) *ReadinessValidator {
	return &ReadinessValidator{fares: fares}
}

// Validate checks, in order: roster completeness, identity and outbound
// flight presence, and a positive grand total. Nil means proceed.
func (v *ReadinessValidator) Validate(sess *models.CheckoutSession) error {
	if idx := sess.Passengers.FirstIncomplete(); idx >= 0 {
		return &status.ValidationError{
			Reason: status.IncompletePassengerData,
			Message: fmt.Sprintf(
				"Please fill all required fields (Name, Age, Gender) for all passengers. Passenger %d is incomplete.",
				idx+1),
		}
	}

	if sess.UserID == "" || sess.Itinerary.Outbound == nil || sess.Itinerary.Outbound.FlightID == "" {
		return &status.ValidationError{
			Reason:  status.MissingContext,
			Message: "User or flight information is incomplete.",
		}
	}

	if !v.fares.GrandTotal(sess.Itinerary, sess.Passengers).IsPositive() {
		return &status.ValidationError{
			Reason:  status.NonPositiveFare,
			Message: "Invalid fare amount. Please refresh and try again.",
		}
	}

	return nil
}
