package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flight-booking/internal/services/gateway"
	"flight-booking/internal/status"
	"flight-booking/models"
)

type fakeGateway struct {
	scriptErr error
	openErr   error
	openInfo  *gateway.OpenInfo

	form *status.CheckoutForm
	ch   chan *status.Receipt
}

func (g *fakeGateway) GetProvider() gateway.Provider { return gateway.ProviderSandbox }

func (g *fakeGateway) LoadScript(ctx context.Context) error { return g.scriptErr }

func (g *fakeGateway) OpenCheckout(ctx context.Context, form *status.CheckoutForm) (*gateway.OpenInfo, error) {
	g.form = form
	if g.openErr != nil {
		return nil, g.openErr
	}
	return g.openInfo, nil
}

func (g *fakeGateway) VerifyReceipt(r *status.Receipt) bool { return true }

func (g *fakeGateway) SetReceiptChannel(ch chan *status.Receipt) { g.ch = ch }

func (g *fakeGateway) Notify(r *status.Receipt) { g.ch <- r }

func (g *fakeGateway) Close(ctx context.Context) error { return nil }

func setupCheckoutService(gw gateway.CheckoutGateway, st *fakeStore, widgetTimeout time.Duration) (*CheckoutService, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	mock.MatchExpectationsInOrder(false)

	fares := NewFareService()
	svc := NewCheckoutService(
		db, nil, gw,
		NewRosterService(db, 30*time.Minute),
		NewReadinessValidator(fares),
		fares,
		NewBookingSequencer(st, fares),
		nil,
		CheckoutConfig{
			Currency:      "INR",
			MerchantName:  "Flight Booking",
			Descriptor:    "Flight Fare Payment",
			ScriptTimeout: time.Second,
			WidgetTimeout: widgetTimeout,
		},
	)
	return svc, mock
}

func sessionJSON(t *testing.T, sess *models.CheckoutSession) string {
	t.Helper()
	data, err := json.Marshal(sess)
	require.NoError(t, err)
	return string(data)
}

func attemptJSON(t *testing.T, attempt *models.CheckoutAttempt) string {
	t.Helper()
	data, err := json.Marshal(attempt)
	require.NoError(t, err)
	return string(data)
}

func TestCheckoutService_StartCheckout_OpensWidget(t *testing.T) {
	gw := &fakeGateway{openInfo: &gateway.OpenInfo{OrderID: "order_1", KeyID: "rzp_test"}}
	svc, mock := setupCheckoutService(gw, &fakeStore{}, time.Minute)

	sess := readySession()
	mock.ExpectGet("checkout:session:CKOUT-TEST").SetVal(sessionJSON(t, sess))

	// validating and authorizing transitions
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-.*`, `.*`, attemptTTL).SetVal("OK")
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-.*`, `.*`, attemptTTL).SetVal("OK")
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-.*`, `.*`, attemptTTL).SetVal("OK")

	// order id to attempt id mapping
	mock.Regexp().ExpectSet(`checkout:order:order_1`, `ATT-.*`, attemptTTL).SetVal("OK")

	// roster lock
	mock.ExpectGet("checkout:session:CKOUT-TEST").SetVal(sessionJSON(t, sess))
	mock.Regexp().ExpectSet(`checkout:session:CKOUT-TEST`, `.*`, 30*time.Minute).SetVal("OK")

	attempt, err := svc.StartCheckout(context.Background(), "CKOUT-TEST")
	require.NoError(t, err)

	assert.Equal(t, models.StateAuthorizing, attempt.State)
	assert.Equal(t, "order_1", attempt.OrderID)
	assert.Equal(t, int64(440000), attempt.AmountMinor)
	assert.Len(t, attempt.Snapshot, 2)

	require.NotNil(t, gw.form)
	assert.Equal(t, int64(440000), gw.form.AmountMinor)
	assert.Equal(t, "INR", gw.form.Currency)
	assert.Equal(t, "Flight Booking", gw.form.Name)
	assert.Equal(t, "Flight Fare Payment", gw.form.Description)
	assert.Equal(t, "Asha Rao", gw.form.PrefillName)
	assert.Equal(t, "asha@example.com", gw.form.PrefillEmail)
	assert.Equal(t, "AI101", gw.form.Notes["flight"])
}

func TestCheckoutService_StartCheckout_ValidationShortCircuits(t *testing.T) {
	gw := &fakeGateway{openInfo: &gateway.OpenInfo{OrderID: "order_1"}}
	svc, mock := setupCheckoutService(gw, &fakeStore{}, time.Minute)

	sess := readySession()
	sess.Passengers[0].Age = ""
	mock.ExpectGet("checkout:session:CKOUT-TEST").SetVal(sessionJSON(t, sess))
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-.*`, `.*`, attemptTTL).SetVal("OK")
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-.*`, `.*`, attemptTTL).SetVal("OK")

	attempt, err := svc.StartCheckout(context.Background(), "CKOUT-TEST")

	var verr *status.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, status.IncompletePassengerData, verr.Reason)
	assert.Equal(t, models.StateFailed, attempt.State)
	assert.Nil(t, gw.form, "the widget must never open on a validation failure")
}

func TestCheckoutService_StartCheckout_ScriptLoadFailure(t *testing.T) {
	gw := &fakeGateway{scriptErr: status.ErrScriptLoadFailed}
	svc, mock := setupCheckoutService(gw, &fakeStore{}, time.Minute)

	sess := readySession()
	mock.ExpectGet("checkout:session:CKOUT-TEST").SetVal(sessionJSON(t, sess))
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-.*`, `.*`, attemptTTL).SetVal("OK")
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-.*`, `.*`, attemptTTL).SetVal("OK")
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-.*`, `.*`, attemptTTL).SetVal("OK")

	attempt, err := svc.StartCheckout(context.Background(), "CKOUT-TEST")

	require.ErrorIs(t, err, status.ErrScriptLoadFailed)
	assert.Equal(t, models.StateFailed, attempt.State)
	assert.Equal(t, "Payment gateway failed to load. Are you online?", attempt.Message)
	assert.Nil(t, gw.form)
}

func TestCheckoutService_StartCheckout_RejectsLockedSession(t *testing.T) {
	gw := &fakeGateway{}
	svc, mock := setupCheckoutService(gw, &fakeStore{}, time.Minute)

	sess := readySession()
	sess.ActiveAttemptID = "ATT-OTHER"
	mock.ExpectGet("checkout:session:CKOUT-TEST").SetVal(sessionJSON(t, sess))

	_, err := svc.StartCheckout(context.Background(), "CKOUT-TEST")
	assert.ErrorIs(t, err, status.ErrRosterLocked)
}

func TestCheckoutService_CompleteAuthorization_BooksAllLegs(t *testing.T) {
	st := &fakeStore{}
	gw := &fakeGateway{}
	svc, mock := setupCheckoutService(gw, st, time.Minute)

	sess := readySession()
	sess.ActiveAttemptID = "ATT-1"
	attempt := &models.CheckoutAttempt{
		ID:        "ATT-1",
		SessionID: sess.ID,
		UserID:    sess.UserID,
		State:     models.StateAuthorizing,
		Snapshot:  sess.Passengers.Snapshot(),
	}

	mock.ExpectGetDel("checkout:order:order_1").SetVal("ATT-1")
	mock.ExpectGet("checkout:attempt:ATT-1").SetVal(attemptJSON(t, attempt))
	// booking and terminal transitions
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-1`, `.*`, attemptTTL).SetVal("OK")
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-1`, `.*`, attemptTTL).SetVal("OK")
	mock.ExpectGet("checkout:session:CKOUT-TEST").SetVal(sessionJSON(t, sess))
	// roster unlock
	mock.ExpectGet("checkout:session:CKOUT-TEST").SetVal(sessionJSON(t, sess))
	mock.Regexp().ExpectSet(`checkout:session:CKOUT-TEST`, `.*`, 30*time.Minute).SetVal("OK")

	svc.completeAuthorization(context.Background(), &status.Receipt{
		PaymentID: "pay_123",
		OrderID:   "order_1",
		Signature: "sig",
	})

	require.Len(t, st.calls, 2)
	assert.Equal(t, "pay_123", st.calls[0].PaymentID)
	assert.Equal(t, models.LegOutbound, st.calls[0].Leg)
	assert.Equal(t, models.LegReturn, st.calls[1].Leg)
}

func TestCheckoutService_CompleteAuthorization_IsSingleShot(t *testing.T) {
	st := &fakeStore{}
	gw := &fakeGateway{}
	svc, mock := setupCheckoutService(gw, st, time.Minute)

	attempt := &models.CheckoutAttempt{
		ID:        "ATT-1",
		SessionID: "CKOUT-TEST",
		State:     models.StateSucceeded,
	}

	mock.ExpectGetDel("checkout:order:order_1").SetVal("ATT-1")
	mock.ExpectGet("checkout:attempt:ATT-1").SetVal(attemptJSON(t, attempt))

	svc.completeAuthorization(context.Background(), &status.Receipt{
		PaymentID: "pay_456",
		OrderID:   "order_1",
	})

	assert.Empty(t, st.calls, "a duplicate receipt must never trigger another booking sequence")
}

func TestCheckoutService_CompleteAuthorization_DuplicateDeliveryBooksOnce(t *testing.T) {
	st := &fakeStore{}
	gw := &fakeGateway{}
	svc, mock := setupCheckoutService(gw, st, time.Minute)

	sess := readySession()
	sess.ActiveAttemptID = "ATT-1"
	attempt := &models.CheckoutAttempt{
		ID:        "ATT-1",
		SessionID: sess.ID,
		UserID:    sess.UserID,
		State:     models.StateAuthorizing,
		OrderID:   "order_1",
		Snapshot:  sess.Passengers.Snapshot(),
	}

	// Only one delivery claims the mapping; the other finds it gone.
	mock.ExpectGetDel("checkout:order:order_1").SetVal("ATT-1")
	mock.ExpectGetDel("checkout:order:order_1").RedisNil()
	mock.ExpectGet("checkout:attempt:ATT-1").SetVal(attemptJSON(t, attempt))
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-1`, `.*`, attemptTTL).SetVal("OK")
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-1`, `.*`, attemptTTL).SetVal("OK")
	mock.ExpectGet("checkout:session:CKOUT-TEST").SetVal(sessionJSON(t, sess))
	mock.ExpectGet("checkout:session:CKOUT-TEST").SetVal(sessionJSON(t, sess))
	mock.Regexp().ExpectSet(`checkout:session:CKOUT-TEST`, `.*`, 30*time.Minute).SetVal("OK")

	// The same completion arrives twice, once from the confirmation
	// webhook and once from the gateway notification channel.
	r := &status.Receipt{PaymentID: "pay_123", OrderID: "order_1", Signature: "sig"}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.completeAuthorization(context.Background(), r)
		}()
	}
	wg.Wait()

	require.Len(t, st.calls, 2, "each leg must be submitted exactly once")
	assert.Equal(t, models.LegOutbound, st.calls[0].Leg)
	assert.Equal(t, models.LegReturn, st.calls[1].Leg)
}

func TestCheckoutService_WatchAbandonment(t *testing.T) {
	gw := &fakeGateway{}
	svc, mock := setupCheckoutService(gw, &fakeStore{}, time.Millisecond)

	sess := readySession()
	sess.ActiveAttemptID = "ATT-1"
	attempt := &models.CheckoutAttempt{
		ID:        "ATT-1",
		SessionID: sess.ID,
		State:     models.StateAuthorizing,
		OrderID:   "order_1",
	}

	mock.ExpectGet("checkout:attempt:ATT-1").SetVal(attemptJSON(t, attempt))
	mock.ExpectGetDel("checkout:order:order_1").SetVal("ATT-1")
	mock.Regexp().ExpectSet(`checkout:attempt:ATT-1`, `.*`, attemptTTL).SetVal("OK")
	mock.ExpectGet("checkout:session:CKOUT-TEST").SetVal(sessionJSON(t, sess))
	mock.Regexp().ExpectSet(`checkout:session:CKOUT-TEST`, `.*`, 30*time.Minute).SetVal("OK")

	svc.watchAbandonment("ATT-1")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckoutService_WatchAbandonment_YieldsToCompletion(t *testing.T) {
	gw := &fakeGateway{}
	svc, mock := setupCheckoutService(gw, &fakeStore{}, time.Millisecond)

	attempt := &models.CheckoutAttempt{
		ID:        "ATT-1",
		SessionID: "CKOUT-TEST",
		State:     models.StateAuthorizing,
		OrderID:   "order_1",
	}

	// A completion already claimed the order mapping; the watcher must
	// not abandon the attempt out from under it.
	mock.ExpectGet("checkout:attempt:ATT-1").SetVal(attemptJSON(t, attempt))
	mock.ExpectGetDel("checkout:order:order_1").RedisNil()

	svc.watchAbandonment("ATT-1")

	assert.NoError(t, mock.ExpectationsWereMet())
}
