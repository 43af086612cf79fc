package handlers

import (
	"log/slog"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"flight-booking/models"
)

type BookingHandler struct {
	app *pocketbase.PocketBase

	// apiToken authenticates server-to-server booking submissions.
	apiToken string
}

func NewBookingHandler(app *pocketbase.PocketBase, apiToken string) *BookingHandler {
	return &BookingHandler{
		app:      app,
		apiToken: apiToken,
	}
}

// BookFlight - Persist one leg's booking. One call per leg; the caller
// sequences legs and never retries a failed one.
func (h *BookingHandler) BookFlight(e *core.RequestEvent) error {
	if h.apiToken != "" && e.Request.Header.Get("Authorization") != h.apiToken {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req models.BookingPayload
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid booking payload", err)
	}
	if req.UserID == "" || req.FlightID == "" || req.PaymentID == "" {
		return e.JSON(http.StatusBadRequest, map[string]any{
			"message": "user_id, flight_id and payment_id are required",
		})
	}
	if len(req.Passengers) == 0 {
		return e.JSON(http.StatusBadRequest, map[string]any{
			"message": "at least one passenger is required",
		})
	}

	collection, err := h.app.FindCollectionByNameOrId("bookings")
	if err != nil {
		slog.Error("h.app.FindCollectionByNameOrId()", "error", err)
		return e.JSON(http.StatusInternalServerError, map[string]any{
			"message": "booking storage unavailable",
		})
	}

	record := core.NewRecord(collection)
	record.Set("user_id", req.UserID)
	record.Set("user_email", req.UserEmail)
	record.Set("user_name", req.UserName)
	record.Set("flight_id", req.FlightID)
	record.Set("payment_id", req.PaymentID)
	record.Set("passengers", req.Passengers)
	record.Set("travel_class", req.TravelClass)
	record.Set("flight_from", req.FlightFrom)
	record.Set("flight_to", req.FlightTo)
	record.Set("flight_date", req.FlightDate)
	record.Set("total_amount", req.TotalAmount.String())
	record.Set("status", "confirmed")

	if err := h.app.Save(record); err != nil {
		slog.Error("h.app.Save(booking)", "payment_id", req.PaymentID, "error", err)
		return e.JSON(http.StatusInternalServerError, map[string]any{
			"message": "could not save booking",
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":    "Booking confirmed",
		"booking_id": record.Id,
	})
}

// GetBookingHistory - List the caller's bookings, newest first
func (h *BookingHandler) GetBookingHistory(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var rows []dbx.NullStringMap
	err := h.app.DB().
		Select("id", "flight_id", "payment_id", "flight_from", "flight_to", "flight_date", "travel_class", "total_amount", "status", "created").
		From("bookings").
		Where(dbx.HashExp{"user_id": e.Auth.Id}).
		OrderBy("created DESC").
		All(&rows)
	if err != nil {
		slog.Error("booking history query", "user", e.Auth.Id, "error", err)
		return apis.NewInternalServerError("internal error", err)
	}

	bookings := []map[string]any{}
	for _, row := range rows {
		booking := map[string]any{}
		for col, val := range row {
			booking[col] = val.String
		}
		bookings = append(bookings, booking)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"bookings": bookings,
		"count":    len(bookings),
	})
}
