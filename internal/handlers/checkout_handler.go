package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"flight-booking/internal/status"
	"flight-booking/models"
	"flight-booking/services"
)

type CheckoutHandler struct {
	app      *pocketbase.PocketBase
	roster   *services.RosterService
	checkout *services.CheckoutService
	fares    *services.FareService
}

func NewCheckoutHandler(app *pocketbase.PocketBase, roster *services.RosterService, checkout *services.CheckoutService, fares *services.FareService) *CheckoutHandler {
	return &CheckoutHandler{
		app:      app,
		roster:   roster,
		checkout: checkout,
		fares:    fares,
	}
}

// CreateSession - Open a checkout session for the selected itinerary
func (h *CheckoutHandler) CreateSession(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		Itinerary models.Itinerary `json:"itinerary"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Itinerary.Outbound == nil {
		return apis.NewBadRequestError("An outbound flight is required", nil)
	}

	ctx := e.Request.Context()
	sess, err := h.roster.CreateSession(ctx, e.Auth.Id, e.Auth.Email(), e.Auth.GetString("name"), req.Itinerary)
	if err != nil {
		slog.Error("h.roster.CreateSession()", "user", e.Auth.Id, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	return e.JSON(http.StatusOK, sess)
}

// GetSession - Fetch one checkout session
func (h *CheckoutHandler) GetSession(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	sess, err := h.sessionForAuth(e)
	if err != nil {
		return err
	}
	return e.JSON(http.StatusOK, sess)
}

// AddPassenger - Append a blank passenger to the roster
func (h *CheckoutHandler) AddPassenger(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	if _, err := h.sessionForAuth(e); err != nil {
		return err
	}

	ctx := e.Request.Context()
	sess, idx, err := h.roster.AddPassenger(ctx, e.Request.PathValue("sessionId"))
	if err != nil {
		return rosterError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"index":   idx,
		"session": sess,
	})
}

// UpdatePassenger - Write one field of one passenger
func (h *CheckoutHandler) UpdatePassenger(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	if _, err := h.sessionForAuth(e); err != nil {
		return err
	}

	index, err := strconv.Atoi(e.Request.PathValue("index"))
	if err != nil {
		return apis.NewBadRequestError("Invalid passenger index", err)
	}

	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	switch req.Field {
	case "name", "age", "gender":
	default:
		return apis.NewBadRequestError("Field must be one of name, age, gender", nil)
	}

	ctx := e.Request.Context()
	sess, err := h.roster.UpdatePassenger(ctx, e.Request.PathValue("sessionId"), index, req.Field, req.Value)
	if err != nil {
		return rosterError(err)
	}

	return e.JSON(http.StatusOK, sess)
}

// GetFareBreakdown - Per-leg totals and the grand total for the session
func (h *CheckoutHandler) GetFareBreakdown(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	sess, err := h.sessionForAuth(e)
	if err != nil {
		return err
	}

	it, roster := sess.Itinerary, sess.Passengers
	return e.JSON(http.StatusOK, map[string]any{
		"outbound_total": h.fares.LegTotal(it, roster, models.LegOutbound),
		"return_total":   h.fares.LegTotal(it, roster, models.LegReturn),
		"grand_total":    h.fares.GrandTotal(it, roster),
		"amount_minor":   h.fares.GrandTotalMinorUnits(it, roster),
		"passengers":     len(roster),
	})
}

// Pay - Validate and open a hosted checkout for the session total
func (h *CheckoutHandler) Pay(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}
	if _, err := h.sessionForAuth(e); err != nil {
		return err
	}

	ctx := e.Request.Context()
	attempt, err := h.checkout.StartCheckout(ctx, e.Request.PathValue("sessionId"))
	if err != nil {
		var verr *status.ValidationError
		if errors.As(err, &verr) {
			return e.JSON(http.StatusUnprocessableEntity, map[string]any{
				"message": verr.Message,
				"reason":  string(verr.Reason),
			})
		}
		if errors.Is(err, status.ErrRosterLocked) {
			return apis.NewBadRequestError("A payment attempt is already in progress", nil)
		}
		slog.Error("h.checkout.StartCheckout()", "session", e.Request.PathValue("sessionId"), "error", err)
		msg := "Could not start payment. Please try again."
		if attempt != nil && attempt.Message != "" {
			msg = attempt.Message
		}
		return e.JSON(http.StatusBadGateway, map[string]any{"message": msg})
	}

	return e.JSON(http.StatusOK, attempt)
}

// GetAttempt - Poll one attempt's state
func (h *CheckoutHandler) GetAttempt(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	ctx := e.Request.Context()
	attempt, err := h.checkout.GetAttempt(ctx, e.Request.PathValue("attemptId"))
	if err != nil {
		if errors.Is(err, status.ErrAttemptNotFound) {
			return apis.NewNotFoundError("Attempt not found", nil)
		}
		return apis.NewInternalServerError("internal error", err)
	}
	if attempt.UserID != e.Auth.Id {
		return apis.NewForbiddenError("Access denied", nil)
	}

	return e.JSON(http.StatusOK, attempt)
}

// ConfirmPayment - Gateway completion webhook. The receipt signature is
// verified inside the gateway; an invalid one is dropped silently.
func (h *CheckoutHandler) ConfirmPayment(e *core.RequestEvent) error {
	var req struct {
		PaymentID string `json:"razorpay_payment_id"`
		OrderID   string `json:"razorpay_order_id"`
		Signature string `json:"razorpay_signature"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.PaymentID == "" || req.OrderID == "" {
		return apis.NewBadRequestError("payment id and order id are required", nil)
	}

	h.checkout.HandleCompletion(&status.Receipt{
		PaymentID: req.PaymentID,
		OrderID:   req.OrderID,
		Signature: req.Signature,
	})

	return e.JSON(http.StatusOK, map[string]any{"message": "Completion accepted"})
}

// SimulateCompletion - Inject a completion receipt (for testing)
func (h *CheckoutHandler) SimulateCompletion(e *core.RequestEvent) error {
	var req struct {
		PaymentID string `json:"payment_id"`
		OrderID   string `json:"order_id"`
		Signature string `json:"signature"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	h.checkout.HandleCompletion(&status.Receipt{
		PaymentID: req.PaymentID,
		OrderID:   req.OrderID,
		Signature: req.Signature,
	})

	return e.JSON(http.StatusOK, map[string]any{"message": "Completion simulation sent"})
}

func (h *CheckoutHandler) sessionForAuth(e *core.RequestEvent) (*models.CheckoutSession, error) {
	ctx := e.Request.Context()
	sess, err := h.roster.GetSession(ctx, e.Request.PathValue("sessionId"))
	if err != nil {
		if errors.Is(err, status.ErrSessionNotFound) {
			return nil, apis.NewNotFoundError("Session not found or expired", nil)
		}
		return nil, apis.NewInternalServerError("internal error", err)
	}
	if sess.UserID != e.Auth.Id {
		return nil, apis.NewForbiddenError("Access denied", nil)
	}
	return sess, nil
}

func rosterError(err error) error {
	switch {
	case errors.Is(err, status.ErrRosterLocked):
		return apis.NewBadRequestError("Passengers cannot be edited while a payment is in progress", nil)
	case errors.Is(err, status.ErrSessionNotFound):
		return apis.NewNotFoundError("Session not found or expired", nil)
	default:
		return apis.NewInternalServerError("internal error", err)
	}
}
