package org

import "time"

// Membership links a user to an organization. Memberships are written by the
// main account service; this subsystem only reads them, for authorization of
// exposure reports and for the status view.
type Membership struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OrgID     string    `json:"org_id"`
	CreatedAt time.Time `json:"created_at"`
}
