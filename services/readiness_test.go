package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-booking/internal/status"
	"flight-booking/models"
)

func readySession() *models.CheckoutSession {
	return &models.CheckoutSession{
		ID:         "CKOUT-TEST",
		UserID:     "user1",
		UserEmail:  "asha@example.com",
		Itinerary:  roundTripItinerary(),
		Passengers: twoAdults(),
	}
}

func validationReason(t *testing.T, err error) status.ValidationReason {
	t.Helper()
	require.Error(t, err)
	verr, ok := err.(*status.ValidationError)
	require.True(t, ok, "expected a validation error, got %T", err)
	return verr.Reason
}

func TestReadinessValidator_Passes(t *testing.T) {
	v := NewReadinessValidator(NewFareService())
	assert.NoError(t, v.Validate(readySession()))
}

func TestReadinessValidator_IncompletePassenger(t *testing.T) {
	v := NewReadinessValidator(NewFareService())

	sess := readySession()
	sess.Passengers[1].Gender = ""

	err := v.Validate(sess)
	assert.Equal(t, status.IncompletePassengerData, validationReason(t, err))
	assert.Contains(t, err.(*status.ValidationError).Message, "Passenger 2")
}

func TestReadinessValidator_MissingContext(t *testing.T) {
	v := NewReadinessValidator(NewFareService())

	sess := readySession()
	sess.UserID = ""
	err := v.Validate(sess)
	assert.Equal(t, status.MissingContext, validationReason(t, err))

	sess = readySession()
	sess.Itinerary.Outbound = nil
	err = v.Validate(sess)
	assert.Equal(t, status.MissingContext, validationReason(t, err))
}

func TestReadinessValidator_NonPositiveFare(t *testing.T) {
	v := NewReadinessValidator(NewFareService())

	sess := readySession()
	sess.Itinerary.OutboundFares = nil
	sess.Itinerary.ReturnFares = nil

	err := v.Validate(sess)
	assert.Equal(t, status.NonPositiveFare, validationReason(t, err))
}

func TestReadinessValidator_ChecksRunInOrder(t *testing.T) {
	v := NewReadinessValidator(NewFareService())

	// every check would fail; the roster check wins
	sess := readySession()
	sess.UserID = ""
	sess.Itinerary.OutboundFares = models.FareTable{
		models.PassengerAdult: decimal.Zero,
	}
	sess.Passengers[0].Name = ""

	err := v.Validate(sess)
	assert.Equal(t, status.IncompletePassengerData, validationReason(t, err))
}
