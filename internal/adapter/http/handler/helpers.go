package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/txledger/internal/adapter/http/dto"
	"github.com/iho/txledger/internal/adapter/http/middleware"
	"github.com/iho/txledger/internal/domain"
)

// accountRef identifies the account a request addresses.
type accountRef struct {
	ownerID  string
	bankID   string
	password string
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMismatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAccountID),
		errors.Is(err, domain.ErrInvalidPassword):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrRuleViolation),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrNegativeAmount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// accountFromRequest reads owner and bank from the route and the password
// placed in the context by middleware.RequirePassword.
func accountFromRequest(r *http.Request) (accountRef, bool) {
	ref := accountRef{
		ownerID: chi.URLParam(r, "owner"),
		bankID:  chi.URLParam(r, "bank"),
	}
	password, ok := middleware.PasswordFromContext(r.Context())
	if !ok || ref.ownerID == "" || ref.bankID == "" {
		return accountRef{}, false
	}
	ref.password = password
	return ref, true
}
