package api

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/breachwatch/breachwatch/internal/user"
)

// Inviter issues invitations, creating placeholder users as needed.
type Inviter interface {
	Invite(ctx context.Context, email string) (*user.User, error)
}

// inviteHandler groups the invitation HTTP handlers for both the admin and
// the system-to-system surfaces.
type inviteHandler struct {
	issuer   Inviter
	onInvite func()
}

func newInviteHandler(issuer Inviter, onInvite func()) *inviteHandler {
	return &inviteHandler{
		issuer:   issuer,
		onInvite: onInvite,
	}
}

// inviteRequest is the JSON body for both invite endpoints.
type inviteRequest struct {
	Email string `json:"email"`
}

// invitedUserResponse is the full projection returned to admin callers.
type invitedUserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	AKey      string    `json:"akey"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *inviteHandler) invite(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	var req inviteRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "failed to parse request body")
		return nil, false
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "email is required")
		return nil, false
	}
	if _, err := mail.ParseAddress(email); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "email is not a valid address")
		return nil, false
	}

	u, err := h.issuer.Invite(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to issue invitation")
		return nil, false
	}

	auditLog(r, "invite", "user", u.ID, "email", u.Email)
	if h.onInvite != nil {
		h.onInvite()
	}
	return u, true
}

// AdminInvite handles POST /admin/invite.
func (h *inviteHandler) AdminInvite(w http.ResponseWriter, r *http.Request) {
	u, ok := h.invite(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, invitedUserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AKey:      u.AKey,
		CreatedAt: u.CreatedAt,
	})
}

// SystemInvite handles POST /api/invite.
func (h *inviteHandler) SystemInvite(w http.ResponseWriter, r *http.Request) {
	u, ok := h.invite(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"userId": u.ID})
}
