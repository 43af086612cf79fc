package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"flight-booking/internal/services/store"
	"flight-booking/internal/status"
	"flight-booking/models"
	"flight-booking/utils"
)

// BookingSequencer turns an authorized payment into persisted bookings,
// one persistence call per active leg, outbound first. Every payload is
// constructed and checked before the first call goes out; after that,
// submission is strictly sequential with early exit on the first failure.
// There is no compensation path: money moved, so whatever persisted stays.
type BookingSequencer struct {
	store   store.BookingStore
	breaker *utils.CircuitBreaker
	fares   *FareService
}

func NewBookingSequencer(st store.BookingStore, fares *FareService) *BookingSequencer {
	return &BookingSequencer{
		store:   st,
		breaker: utils.NewCircuitBreaker("booking-store"),
		fares:   fares,
	}
}

// BuildLegPayloads constructs one payload per active leg from the session
// and a completed payment. All preconditions are checked here so that a
// defective leg aborts the sequence before any network call.
func (s *BookingSequencer) BuildLegPayloads(sess *models.CheckoutSession, roster models.Roster, paymentID string) ([]models.BookingPayload, error) {
	it := sess.Itinerary

	var payloads []models.BookingPayload
	for _, leg := range it.ActiveLegs() {
		flight := it.FlightFor(leg)
		if flight == nil {
			return nil, &status.BookingConstructionError{
				Leg:     string(leg),
				Reason:  status.MissingFlightDate,
				Message: "flight snapshot missing",
			}
		}

		date := flight.TravelDate()
		if strings.TrimSpace(date) == "" {
			return nil, &status.BookingConstructionError{
				Leg:     string(leg),
				Reason:  status.MissingFlightDate,
				Message: fmt.Sprintf("flight %s has no travel date", flight.FlightNumber),
			}
		}

		total := s.fares.LegTotal(it, roster, leg)
		if !total.IsPositive() {
			return nil, &status.BookingConstructionError{
				Leg:     string(leg),
				Reason:  status.NonPositiveLegFare,
				Message: fmt.Sprintf("leg total %s is not positive", total.String()),
			}
		}

		payloads = append(payloads, models.BookingPayload{
			UserID:      sess.UserID,
			UserEmail:   sess.UserEmail,
			UserName:    sess.UserName,
			FlightID:    flight.FlightID,
			PaymentID:   paymentID,
			Passengers:  roster,
			TravelClass: flight.ClassOrDefault(),
			FlightFrom:  flight.From,
			FlightTo:    flight.To,
			FlightDate:  date,
			TotalAmount: total,
			Leg:         leg,
		})
	}

	return payloads, nil
}

// Execute runs the sequence. The outcome is Succeeded only when every leg
// persisted; PartiallyBooked when a later leg failed after an earlier one
// confirmed; Failed when nothing persisted.
func (s *BookingSequencer) Execute(ctx context.Context, sess *models.CheckoutSession, roster models.Roster, paymentID string) models.BookingOutcome {
	payloads, err := s.BuildLegPayloads(sess, roster, paymentID)
	if err != nil {
		log.Printf("[booking] payload construction failed for session %s: %v", sess.ID, err)
		return models.BookingOutcome{
			Status:  models.OutcomeFailed,
			Message: "Booking could not be prepared. Your payment was received; please contact support.",
		}
	}

	outcome := models.BookingOutcome{Status: models.OutcomeSucceeded}
	var confirmed []string

	for _, p := range payloads {
		p := p
		result, err := s.breaker.Execute(ctx, func() (any, error) {
			return s.store.Submit(ctx, p)
		})
		if err != nil {
			var perr *status.PersistenceError
			if errors.As(err, &perr) {
				perr.PriorConfirmed = confirmed
			} else {
				perr = &status.PersistenceError{
					Leg:            string(p.Leg),
					Message:        err.Error(),
					PriorConfirmed: confirmed,
				}
			}
			log.Printf("[booking] %v", perr)

			outcome.Legs = append(outcome.Legs, models.LegResult{
				Leg:     p.Leg,
				Message: perr.Message,
			})
			if perr.PartiallyBooked() {
				outcome.Status = models.OutcomePartiallyBooked
				outcome.Message = fmt.Sprintf(
					"Your %s flight is booked, but the %s flight could not be confirmed. Please contact support with payment id %s.",
					strings.Join(perr.PriorConfirmed, " and "), perr.Leg, paymentID)
			} else {
				outcome.Status = models.OutcomeFailed
				outcome.Message = "Booking failed after payment. Please contact support with your payment id."
			}
			return outcome
		}

		bookingID, _ := result.(string)
		confirmed = append(confirmed, string(p.Leg))
		outcome.Legs = append(outcome.Legs, models.LegResult{
			Leg:       p.Leg,
			Confirmed: true,
			BookingID: bookingID,
		})
	}

	outcome.Message = "Your flight booking is confirmed."
	return outcome
}
