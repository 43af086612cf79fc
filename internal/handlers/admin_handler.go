package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"

	"flight-booking/models"
)

type AdminHandler struct {
	app   *pocketbase.PocketBase
	redis *redis.Client
}

func NewAdminHandler(app *pocketbase.PocketBase, redisClient *redis.Client) *AdminHandler {
	return &AdminHandler{
		app:   app,
		redis: redisClient,
	}
}

func (h *AdminHandler) requireAdmin(e *core.RequestEvent) error {
	if e.Auth == nil || !e.Auth.GetBool("is_admin") {
		return apis.NewUnauthorizedError("Admin access required", nil)
	}
	return nil
}

// GetAttemptDashboard - Live attempt counts per state
func (h *AdminHandler) GetAttemptDashboard(e *core.RequestEvent) error {
	if err := h.requireAdmin(e); err != nil {
		return err
	}
	ctx := e.Request.Context()

	keys, err := h.redis.Keys(ctx, "checkout:attempt:*").Result()
	if err != nil {
		return apis.NewBadRequestError("Failed to scan attempts", err)
	}

	counts := map[string]int{}
	total := 0
	for _, key := range keys {
		data, err := h.redis.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var attempt models.CheckoutAttempt
		if err := json.Unmarshal([]byte(data), &attempt); err != nil {
			continue
		}
		counts[string(attempt.State)]++
		total++
	}

	return e.JSON(http.StatusOK, map[string]any{
		"total_attempts": total,
		"by_state":       counts,
	})
}

// GetPartiallyBooked - Attempts where payment succeeded but a leg did not
// persist. These are the ones support has to resolve by hand.
func (h *AdminHandler) GetPartiallyBooked(e *core.RequestEvent) error {
	if err := h.requireAdmin(e); err != nil {
		return err
	}
	ctx := e.Request.Context()

	keys, err := h.redis.Keys(ctx, "checkout:attempt:*").Result()
	if err != nil {
		return apis.NewBadRequestError("Failed to scan attempts", err)
	}

	attempts := []map[string]any{}
	for _, key := range keys {
		data, err := h.redis.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var attempt models.CheckoutAttempt
		if err := json.Unmarshal([]byte(data), &attempt); err != nil {
			continue
		}
		if attempt.State != models.StatePartiallyBooked {
			continue
		}

		userEmail := ""
		if user, err := h.app.FindRecordById("users", attempt.UserID); err == nil {
			userEmail = user.Email()
		}

		attempts = append(attempts, map[string]any{
			"attempt_id": attempt.ID,
			"user_id":    attempt.UserID,
			"user_email": userEmail,
			"payment_id": attempt.PaymentID,
			"order_id":   attempt.OrderID,
			"legs":       attempt.Legs,
			"message":    attempt.Message,
			"updated_at": attempt.UpdatedAt,
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"attempts": attempts,
		"count":    len(attempts),
	})
}
