package api

import "net/http"

// wellKnownManifest is the static JSON manifest for /.well-known/breachwatch.json.
const wellKnownManifest = `{
  "name": "BreachWatch",
  "description": "Exposure reporting and organization invitation service",
  "version": "0.1.0",
  "auth": {
    "admin_header": "admin_token",
    "api_header": "x-vaultwarden-api"
  },
  "endpoints": {
    "admin_invite": "/admin/invite",
    "admin_user": "/admin/user/{userID}",
    "api_invite": "/api/invite",
    "api_user_details": "/api/user/{userID}/details",
    "exposed": "/exposed"
  },
  "health": "/health"
}`

// WellKnownHandler returns the static BreachWatch well-known manifest.
func WellKnownHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(wellKnownManifest))
}
