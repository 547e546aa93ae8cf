package report

import "time"

// Report records an exposed-credential count. Exactly one of UserID and
// OrgID is set: a personal report is attributed to a single user, an
// organizational report is an anonymized aggregate that carries no user
// identity. At most one row exists per user and per organization; repeated
// reports overwrite the count rather than accumulating it.
type Report struct {
	ID            string    `json:"id"`
	UserID        *string   `json:"user_id,omitempty"`
	OrgID         *string   `json:"org_id,omitempty"`
	ExposedCount  int       `json:"exposed_count"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// clampCount floors a submitted count at zero. Reporting clients are
// best-effort and have sent negative sentinel values; those are stored as
// zero, never negative.
func clampCount(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
