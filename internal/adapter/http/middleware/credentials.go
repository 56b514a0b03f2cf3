package middleware

import (
	"context"
	"net/http"
)

// PasswordHeader carries the account password on every account request.
const PasswordHeader = "X-Account-Password"

// ContextKey is the type for context keys
type ContextKey string

const (
	// PasswordContextKey is the context key for the account password.
	PasswordContextKey ContextKey = "account_password"
)

// RequirePassword rejects requests without an account password and passes
// the password down through the request context. The password is checked
// against the account by the use case, not here.
func RequirePassword(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		password := r.Header.Get(PasswordHeader)
		if password == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing "+PasswordHeader+" header")
			return
		}

		ctx := context.WithValue(r.Context(), PasswordContextKey, password)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PasswordFromContext extracts the account password from ctx.
func PasswordFromContext(ctx context.Context) (string, bool) {
	password, ok := ctx.Value(PasswordContextKey).(string)
	return password, ok
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
