package user

import "time"

// User is an account record. A user whose AKey is empty has not completed
// onboarding yet (a placeholder created by an invite); the account key is set
// by the client when the owner chooses a master credential.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	AKey       string    `json:"akey"`
	PrivateKey *string   `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Initialized reports whether the user has completed onboarding.
func (u *User) Initialized() bool {
	return u.AKey != ""
}
