// Package httpx holds the request and response helpers shared by the HTTP handlers.
package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/taskmart/internal/domain"
	"github.com/GlebRadaev/taskmart/pkg/auth"
	"github.com/GlebRadaev/taskmart/pkg/utils"
)

// Actor returns the authenticated caller of r.
func Actor(r *http.Request) (domain.Actor, bool) {
	id, role, ok := auth.Identity(r.Context())
	if !ok {
		return domain.Actor{}, false
	}
	return domain.Actor{ID: id, Role: domain.Role(role)}, true
}

// PathID parses a positive integer URL parameter.
func PathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Limit reads the optional ?limit= query parameter. Zero lets the service
// apply its default.
func Limit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// Status maps a service error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrSlotsExhausted),
		errors.Is(err, domain.ErrDuplicateClaim),
		errors.Is(err, domain.ErrAlreadyReviewed),
		errors.Is(err, domain.ErrConcurrentModification),
		errors.Is(err, domain.ErrIdempotencyConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTaskUnavailable),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrInvalidStep),
		errors.Is(err, domain.ErrBelowMinimum):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// WriteError responds with the status of err. Unclassified errors are
// logged and hidden from the client.
func WriteError(w http.ResponseWriter, err error) {
	code := Status(err)
	if code == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.Error(err))
		utils.RespondWithError(w, code, "Internal server error")
		return
	}
	utils.RespondWithError(w, code, err.Error())
}
