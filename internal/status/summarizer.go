// Package status derives the read-only dashboard view of a user's
// onboarding state and exposure counts.
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/breachwatch/breachwatch/internal/org"
	"github.com/breachwatch/breachwatch/internal/report"
	"github.com/breachwatch/breachwatch/internal/user"
	"github.com/jackc/pgx/v5"
)

// Activation states reported in a Summary.
const (
	StatusPending = "Pending" // no memberships yet
	StatusActive  = "Active"
)

// Summary is the dashboard view for a single user.
type Summary struct {
	Status        string     `json:"status"`
	OrgID         *string    `json:"orgId,omitempty"`
	MembersCount  int64      `json:"membersCount"`
	ExposedCount  int        `json:"exposedCount"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
}

// UserLookup resolves the user being summarized.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// MembershipStore provides the membership lookups for the view.
type MembershipStore interface {
	ListByUser(ctx context.Context, userID string) ([]org.Membership, error)
	CountByOrg(ctx context.Context, orgID string) (int64, error)
}

// ReportLookup fetches the organizational exposure report.
type ReportLookup interface {
	GetByOrg(ctx context.Context, orgID string) (*report.Report, error)
}

// Summarizer composes user, membership, and report lookups into a Summary.
type Summarizer struct {
	users       UserLookup
	memberships MembershipStore
	reports     ReportLookup
}

// NewSummarizer creates a summarizer over the given lookups.
func NewSummarizer(users UserLookup, memberships MembershipStore, reports ReportLookup) *Summarizer {
	return &Summarizer{
		users:       users,
		memberships: memberships,
		reports:     reports,
	}
}

// Summarize builds the dashboard view for userID. An unknown user yields an
// error wrapping pgx.ErrNoRows.
//
// This view models a user as belonging to at most one organization: when
// multiple memberships exist only the oldest one is reflected.
func (s *Summarizer) Summarize(ctx context.Context, userID string) (*Summary, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving user: %w", err)
	}

	memberships, err := s.memberships.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("loading memberships: %w", err)
	}

	if len(memberships) == 0 {
		return &Summary{Status: StatusPending}, nil
	}

	orgID := memberships[0].OrgID
	membersCount, err := s.memberships.CountByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("counting org members: %w", err)
	}

	summary := &Summary{
		Status:       StatusActive,
		OrgID:        &orgID,
		MembersCount: membersCount,
	}

	rp, err := s.reports.GetByOrg(ctx, orgID)
	switch {
	case err == nil:
		summary.ExposedCount = rp.ExposedCount
		updated := rp.LastUpdatedAt
		summary.LastUpdatedAt = &updated
	case errors.Is(err, pgx.ErrNoRows):
		// No report yet; counts stay at zero.
	default:
		return nil, fmt.Errorf("loading org report: %w", err)
	}

	return summary, nil
}
