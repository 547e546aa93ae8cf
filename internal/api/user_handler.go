package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/breachwatch/breachwatch/internal/status"
	"github.com/breachwatch/breachwatch/internal/user"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

// UserGetter resolves a user by ID.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// InviteLinker derives the onboarding link for a user, if one applies.
type InviteLinker interface {
	BuildLink(u *user.User) (string, *string, error)
}

// StatusSummarizer builds the per-user dashboard view.
type StatusSummarizer interface {
	Summarize(ctx context.Context, userID string) (*status.Summary, error)
}

// userHandler groups the per-user read endpoints.
type userHandler struct {
	users      UserGetter
	links      InviteLinker
	summarizer StatusSummarizer
}

func newUserHandler(users UserGetter, links InviteLinker, summarizer StatusSummarizer) *userHandler {
	return &userHandler{
		users:      users,
		links:      links,
		summarizer: summarizer,
	}
}

// inviteLinkResponse is the admin view of a user's onboarding state.
type inviteLinkResponse struct {
	Email string  `json:"email"`
	URL   *string `json:"url,omitempty"`
}

// GetInviteLink handles GET /admin/user/{userID}.
func (h *userHandler) GetInviteLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_id", "user id is required")
		return
	}

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to load user")
		return
	}

	email, link, err := h.links.BuildLink(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to build invite link")
		return
	}

	writeJSON(w, http.StatusOK, inviteLinkResponse{Email: email, URL: link})
}

// GetDetails handles GET /api/user/{userID}/details.
func (h *userHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "userID")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_id", "user id is required")
		return
	}

	summary, err := h.summarizer.Summarize(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to summarize user")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
