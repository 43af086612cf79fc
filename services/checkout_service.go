package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	pubnub "github.com/pubnub/go"
	"github.com/redis/go-redis/v9"

	"flight-booking/internal/services/gateway"
	"flight-booking/internal/status"
	"flight-booking/models"
	"flight-booking/monitoring"
	"flight-booking/utils"
)

// attemptTTL keeps resolved attempts inspectable for a day, long enough
// for the support dashboard and the metrics monitor.
const attemptTTL = 24 * time.Hour

// CheckoutService drives one payment attempt through its states:
// validating, script loading, authorizing, booking, then a terminal
// state. At most one attempt is in flight per session; the roster is
// locked and snapshotted before the widget opens.
type CheckoutService struct {
	redis     *redis.Client
	pubnub    *pubnub.PubNub
	gateway   gateway.CheckoutGateway
	roster    *RosterService
	validator *ReadinessValidator
	fares     *FareService
	sequencer *BookingSequencer
	monitor   *monitoring.Monitor

	currency      string
	merchantName  string
	descriptor    string
	scriptTimeout time.Duration
	widgetTimeout time.Duration

	receipts chan *status.Receipt
}

type CheckoutConfig struct {
	Currency      string
	MerchantName  string
	Descriptor    string
	ScriptTimeout time.Duration
	WidgetTimeout time.Duration
}

func NewCheckoutService(
	redisClient *redis.Client,
	pn *pubnub.PubNub,
	gw gateway.CheckoutGateway,
	roster *RosterService,
	validator *ReadinessValidator,
	fares *FareService,
	sequencer *BookingSequencer,
	monitor *monitoring.Monitor,
	cfg CheckoutConfig,
) *CheckoutService {
	s := &CheckoutService{
		redis:         redisClient,
		pubnub:        pn,
		gateway:       gw,
		roster:        roster,
		validator:     validator,
		fares:         fares,
		sequencer:     sequencer,
		monitor:       monitor,
		currency:      cfg.Currency,
		merchantName:  cfg.MerchantName,
		descriptor:    cfg.Descriptor,
		scriptTimeout: cfg.ScriptTimeout,
		widgetTimeout: cfg.WidgetTimeout,
		receipts:      make(chan *status.Receipt, 16),
	}

	gw.SetReceiptChannel(s.receipts)
	go s.dispatchReceipts()

	return s
}

func attemptKey(id string) string {
	return fmt.Sprintf("checkout:attempt:%s", id)
}

func orderKey(orderID string) string {
	return fmt.Sprintf("checkout:order:%s", orderID)
}

// StartCheckout runs the pre-payment gate and, if it passes, opens a
// hosted checkout for the session's grand total. On success the returned
// attempt is in the authorizing state and the roster is locked until the
// attempt resolves. Validation and script failures come back as a
// terminal attempt plus the error, with no money moved.
func (s *CheckoutService) StartCheckout(ctx context.Context, sessionID string) (*models.CheckoutAttempt, error) {
	sess, err := s.roster.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Locked() {
		return nil, status.ErrRosterLocked
	}

	attemptID, err := utils.GenerateReference("ATT")
	if err != nil {
		return nil, fmt.Errorf("generate attempt id: %w", err)
	}

	attempt := &models.CheckoutAttempt{
		ID:        attemptID,
		SessionID: sess.ID,
		UserID:    sess.UserID,
		State:     models.StateIdle,
		Currency:  s.currency,
		CreatedAt: time.Now(),
	}
	s.transition(ctx, attempt, models.StateValidating)

	if err := s.validator.Validate(sess); err != nil {
		msg := "Validation failed. Please check your details and try again."
		var verr *status.ValidationError
		if errors.As(err, &verr) {
			msg = verr.Message
		}
		s.fail(ctx, attempt, msg)
		return attempt, err
	}

	// The roster is frozen here; later edits cannot reach the payloads.
	attempt.Snapshot = sess.Passengers.Snapshot()
	attempt.AmountMinor = s.fares.GrandTotalMinorUnits(sess.Itinerary, attempt.Snapshot)

	s.transition(ctx, attempt, models.StateScriptLoading)
	scriptCtx, cancel := context.WithTimeout(ctx, s.scriptTimeout)
	defer cancel()
	if err := s.gateway.LoadScript(scriptCtx); err != nil {
		s.fail(ctx, attempt, "Payment gateway failed to load. Are you online?")
		return attempt, err
	}

	prefillName := ""
	if len(attempt.Snapshot) > 0 {
		prefillName = attempt.Snapshot[0].Name
	}
	form := &status.CheckoutForm{
		AmountMinor:  attempt.AmountMinor,
		Currency:     s.currency,
		Name:         s.merchantName,
		Description:  s.descriptor,
		PrefillName:  prefillName,
		PrefillEmail: sess.UserEmail,
		Notes:        map[string]string{"flight": sess.Itinerary.Outbound.FlightNumber},
		Reference:    attempt.ID,
	}

	info, err := s.gateway.OpenCheckout(ctx, form)
	if err != nil {
		s.fail(ctx, attempt, "Could not start payment. Please try again.")
		return attempt, err
	}

	attempt.OrderID = info.OrderID
	if err := s.redis.Set(ctx, orderKey(info.OrderID), attempt.ID, attemptTTL).Err(); err != nil {
		s.fail(ctx, attempt, "Could not start payment. Please try again.")
		return attempt, err
	}

	if err := s.roster.LockRoster(ctx, sess.ID, attempt.ID); err != nil {
		s.fail(ctx, attempt, "Could not start payment. Please try again.")
		return attempt, err
	}

	s.transition(ctx, attempt, models.StateAuthorizing)
	if s.monitor != nil {
		s.monitor.TrackCheckoutAmount(attempt.AmountMinor)
	}

	go s.watchAbandonment(attempt.ID)

	return attempt, nil
}

// GetAttempt loads one attempt by id.
func (s *CheckoutService) GetAttempt(ctx context.Context, attemptID string) (*models.CheckoutAttempt, error) {
	data, err := s.redis.Get(ctx, attemptKey(attemptID)).Result()
	if err == redis.Nil {
		return nil, status.ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt %s: %w", attemptID, err)
	}

	var attempt models.CheckoutAttempt
	if err := json.Unmarshal([]byte(data), &attempt); err != nil {
		return nil, fmt.Errorf("decode attempt %s: %w", attemptID, err)
	}
	return &attempt, nil
}

// HandleCompletion feeds one completion receipt into the gateway, which
// verifies the signature before it reaches the dispatcher. Used by the
// confirmation webhook path.
func (s *CheckoutService) HandleCompletion(r *status.Receipt) {
	s.gateway.Notify(r)
}

// dispatchReceipts handles one receipt at a time. The same completion can
// arrive twice, once from the confirmation webhook and once from the
// gateway notification channel, so the channel must serialize them.
func (s *CheckoutService) dispatchReceipts() {
	for r := range s.receipts {
		s.completeAuthorization(context.Background(), r)
	}
}

// completeAuthorization resolves the attempt behind a verified receipt.
// Claiming the order mapping with GETDEL makes completion single shot:
// of two deliveries for the same order only one obtains the attempt id,
// the other is dropped before the booking sequence can run.
func (s *CheckoutService) completeAuthorization(ctx context.Context, r *status.Receipt) {
	attemptID, err := s.redis.GetDel(ctx, orderKey(r.OrderID)).Result()
	if err == redis.Nil {
		log.Printf("[checkout] receipt for order %s dropped: %v", r.OrderID, status.ErrReceiptConsumed)
		return
	}
	if err != nil {
		log.Printf("[checkout] no attempt for order %s: %v", r.OrderID, err)
		return
	}

	attempt, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		log.Printf("[checkout] %v", err)
		return
	}
	if attempt.State != models.StateAuthorizing {
		log.Printf("[checkout] attempt %s in state %s: %v", attempt.ID, attempt.State, status.ErrReceiptConsumed)
		return
	}

	attempt.PaymentID = r.PaymentID
	s.transition(ctx, attempt, models.StateBooking)

	sess, err := s.roster.GetSession(ctx, attempt.SessionID)
	if err != nil {
		// Session expired mid-attempt. Payment is taken but nothing can
		// be booked; route the user to support.
		log.Printf("[checkout] session lost for attempt %s: %v", attempt.ID, err)
		attempt.Message = "Your session expired after payment. Please contact support with payment id " + r.PaymentID + "."
		s.transition(ctx, attempt, models.StateFailed)
		return
	}

	outcome := s.sequencer.Execute(ctx, sess, attempt.Snapshot, r.PaymentID)

	attempt.Legs = outcome.Legs
	attempt.Message = outcome.Message
	switch outcome.Status {
	case models.OutcomeSucceeded:
		s.transition(ctx, attempt, models.StateSucceeded)
	case models.OutcomePartiallyBooked:
		s.transition(ctx, attempt, models.StatePartiallyBooked)
		if s.monitor != nil {
			s.monitor.TrackPartialBooking()
		}
	default:
		s.transition(ctx, attempt, models.StateFailed)
	}

	if s.monitor != nil {
		for _, lr := range outcome.Legs {
			result := "failed"
			if lr.Confirmed {
				result = "confirmed"
			}
			s.monitor.TrackLeg(string(lr.Leg), result)
		}
	}

	if err := s.roster.UnlockRoster(ctx, attempt.SessionID); err != nil {
		log.Printf("[checkout] unlock session %s: %v", attempt.SessionID, err)
	}

	s.notifyUser(attempt)
}

// watchAbandonment moves an attempt whose widget never completed to the
// abandoned state once the widget timeout elapses.
func (s *CheckoutService) watchAbandonment(attemptID string) {
	time.Sleep(s.widgetTimeout)

	ctx := context.Background()
	attempt, err := s.GetAttempt(ctx, attemptID)
	if err != nil || attempt.State != models.StateAuthorizing {
		return
	}

	// Claim the order mapping before abandoning. A completion that
	// already claimed it wins; a receipt arriving after this point
	// finds no mapping and is dropped.
	if _, err := s.redis.GetDel(ctx, orderKey(attempt.OrderID)).Result(); err != nil {
		return
	}

	attempt.Message = "Payment window closed without completing."
	s.transition(ctx, attempt, models.StateAbandoned)

	if err := s.roster.UnlockRoster(ctx, attempt.SessionID); err != nil {
		log.Printf("[checkout] unlock session %s: %v", attempt.SessionID, err)
	}
}

func (s *CheckoutService) fail(ctx context.Context, attempt *models.CheckoutAttempt, msg string) {
	attempt.Message = msg
	s.transition(ctx, attempt, models.StateFailed)
}

func (s *CheckoutService) transition(ctx context.Context, attempt *models.CheckoutAttempt, to models.AttemptState) {
	attempt.State = to
	attempt.UpdatedAt = time.Now()

	data, err := json.Marshal(attempt)
	if err != nil {
		log.Printf("[checkout] encode attempt %s: %v", attempt.ID, err)
		return
	}
	if err := s.redis.Set(ctx, attemptKey(attempt.ID), data, attemptTTL).Err(); err != nil {
		log.Printf("[checkout] save attempt %s: %v", attempt.ID, err)
	}

	if s.monitor != nil {
		s.monitor.TrackTransition(string(to))
	}
}

func (s *CheckoutService) notifyUser(attempt *models.CheckoutAttempt) {
	if s.pubnub == nil {
		return
	}

	channel := fmt.Sprintf("user-%s", attempt.UserID)
	s.pubnub.Publish().
		Channel(channel).
		Message(map[string]interface{}{
			"type":       "booking_result",
			"attempt_id": attempt.ID,
			"state":      string(attempt.State),
			"payment_id": attempt.PaymentID,
			"message":    attempt.Message,
		}).
		Execute()
}
