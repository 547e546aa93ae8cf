package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/breachwatch/breachwatch/internal/org"
	"github.com/breachwatch/breachwatch/internal/user"
	"github.com/jackc/pgx/v5"
)

// UserLookup resolves the reporting user.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// MembershipLookup lists the memberships used to authorize org entries.
type MembershipLookup interface {
	ListByUser(ctx context.Context, userID string) ([]org.Membership, error)
}

// ReportWriter performs the atomic report upserts. updatedAt is the
// last_updated_at value for the row; the aggregator stamps it once per
// submission so all rows written for one report carry the same instant.
type ReportWriter interface {
	UpsertPersonal(ctx context.Context, userID string, count int, updatedAt time.Time) error
	UpsertOrg(ctx context.Context, orgID string, count int, updatedAt time.Time) error
}

// Aggregator records exposed-credential counts submitted by reporting
// clients.
type Aggregator struct {
	users       UserLookup
	memberships MembershipLookup
	reports     ReportWriter
	now         func() time.Time // injectable clock for testing

	// OnUpsert, when set, is called after each successful upsert with the
	// report kind ("personal" or "org").
	OnUpsert func(kind string)
}

// NewAggregator creates an aggregator over the given lookups and writer.
func NewAggregator(users UserLookup, memberships MembershipLookup, reports ReportWriter) *Aggregator {
	return &Aggregator{
		users:       users,
		memberships: memberships,
		reports:     reports,
		now:         time.Now,
	}
}

// Record stores the personal count for userID and the counts for each
// organization the user is a member of. Counts overwrite any previous value
// (clamped at zero) rather than accumulating.
//
// An unknown user is a silent no-op: reporting clients are best-effort and
// may reference accounts that no longer exist. Org entries the user holds no
// membership in are silently dropped; the caller cannot write counts into
// organizations it does not belong to. Failures while saving individual
// entries do not stop the remaining entries; they are collected and returned
// as one aggregate error.
func (a *Aggregator) Record(ctx context.Context, userID string, personal int, orgCounts map[string]int) error {
	u, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			slog.Debug("exposure report for unknown user ignored", "user_id", userID)
			return nil
		}
		return fmt.Errorf("resolving reporting user: %w", err)
	}

	memberships, err := a.memberships.ListByUser(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("loading memberships: %w", err)
	}
	memberOf := make(map[string]struct{}, len(memberships))
	for _, m := range memberships {
		memberOf[m.OrgID] = struct{}{}
	}

	var errs []error
	updatedAt := a.now().UTC()

	if err := a.reports.UpsertPersonal(ctx, u.ID, clampCount(personal), updatedAt); err != nil {
		errs = append(errs, err)
	} else if a.OnUpsert != nil {
		a.OnUpsert("personal")
	}

	for orgID, count := range orgCounts {
		if _, ok := memberOf[orgID]; !ok {
			slog.Debug("exposure report for non-member org dropped", "user_id", u.ID, "org_id", orgID)
			continue
		}
		if err := a.reports.UpsertOrg(ctx, orgID, clampCount(count), updatedAt); err != nil {
			errs = append(errs, err)
		} else if a.OnUpsert != nil {
			a.OnUpsert("org")
		}
	}

	return errors.Join(errs...)
}
