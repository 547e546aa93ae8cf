package api

import (
	"context"
	"net/http"
)

// ExposureRecorder persists exposure counts reported by the vault client.
type ExposureRecorder interface {
	Record(ctx context.Context, userID string, personal int, orgCounts map[string]int) error
}

// exposedHandler accepts exposure reports from unauthenticated clients.
type exposedHandler struct {
	recorder ExposureRecorder
}

func newExposedHandler(recorder ExposureRecorder) *exposedHandler {
	return &exposedHandler{recorder: recorder}
}

// exposedRequest is the report payload. Org maps organization IDs to the
// number of exposed credentials visible to the reporting user; Me is the
// user's personal count.
type exposedRequest struct {
	UserID string         `json:"userId"`
	Org    map[string]int `json:"org"`
	Me     int            `json:"me"`
}

// Report handles POST /exposed. Unknown users and unauthorized org entries
// are dropped without signaling, so the response carries no body.
func (h *exposedHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req exposedRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "userId is required")
		return
	}

	if err := h.recorder.Record(r.Context(), req.UserID, req.Me, req.Org); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to record report")
		return
	}

	w.WriteHeader(http.StatusOK)
}
