package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type AuthHandler struct {
	app *pocketbase.PocketBase
}

func NewAuthHandler(app *pocketbase.PocketBase) *AuthHandler {
	return &AuthHandler{app: app}
}

// Authenticate - Verify credentials and report whether the user is an admin
func (h *AuthHandler) Authenticate(e *core.RequestEvent) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		return apis.NewBadRequestError("Email and password are required", nil)
	}

	record, err := h.app.FindAuthRecordByEmail("users", req.Email)
	if err != nil || !record.ValidatePassword(req.Password) {
		return apis.NewUnauthorizedError("Invalid email or password", nil)
	}

	if !record.Verified() {
		return apis.NewForbiddenError("Account is not verified", nil)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Authentication successful",
		"user": map[string]any{
			"id":    record.Id,
			"email": record.Email(),
			"name":  record.GetString("name"),
		},
		"is_admin": record.GetBool("is_admin"),
	})
}
