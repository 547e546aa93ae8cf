package auth

import (
	"encoding/json"
	"net/http"
)

// HeaderName values for the two guarded surfaces. The admin and
// system-integration guards are configured independently and are never
// interchangeable: each middleware instance reads only its own header.
const (
	AdminTokenHeader = "admin_token"
	APIKeyHeader     = "x-vaultwarden-api"
)

// HeaderGuard returns middleware that validates a shared secret supplied in
// the named request header against the expected value. A missing or empty
// header value is rejected as unauthorized. An empty expected value means the
// guard was never configured; that is a server-side problem, so the request
// fails with a 500 rather than a 401. The comparison is exact and
// case-sensitive.
//
// The optional onResult hooks are invoked with the outcome of each check
// (metrics wiring).
func HeaderGuard(header, expected string, onResult ...func(ok bool)) func(http.Handler) http.Handler {
	report := func(ok bool) {
		for _, fn := range onResult {
			if fn != nil {
				fn(ok)
			}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supplied := r.Header.Get(header)
			if supplied == "" {
				report(false)
				writeGuardError(w, http.StatusUnauthorized, "unauthorized", "missing "+header+" header")
				return
			}

			if expected == "" {
				report(false)
				writeGuardError(w, http.StatusInternalServerError, "not_configured", header+" is not configured on this server")
				return
			}

			if supplied != expected {
				report(false)
				writeGuardError(w, http.StatusUnauthorized, "unauthorized", "invalid "+header)
				return
			}

			report(true)
			next.ServeHTTP(w, r)
		})
	}
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeGuardError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorBody{
			Code:    code,
			Message: message,
		},
	})
}
