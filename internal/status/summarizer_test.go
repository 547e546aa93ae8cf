package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/breachwatch/breachwatch/internal/org"
	"github.com/breachwatch/breachwatch/internal/report"
	"github.com/breachwatch/breachwatch/internal/user"
	"github.com/jackc/pgx/v5"
)

type fakeUsers struct {
	users map[string]*user.User
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

type fakeMemberships struct {
	byUser map[string][]org.Membership
	counts map[string]int64
}

func (f *fakeMemberships) ListByUser(_ context.Context, userID string) ([]org.Membership, error) {
	return f.byUser[userID], nil
}

func (f *fakeMemberships) CountByOrg(_ context.Context, orgID string) (int64, error) {
	return f.counts[orgID], nil
}

type fakeReports struct {
	byOrg map[string]*report.Report
	err   error
}

func (f *fakeReports) GetByOrg(_ context.Context, orgID string) (*report.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	rp, ok := f.byOrg[orgID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return rp, nil
}

func TestSummarize_UnknownUser(t *testing.T) {
	s := NewSummarizer(&fakeUsers{users: map[string]*user.User{}}, &fakeMemberships{}, &fakeReports{})

	_, err := s.Summarize(context.Background(), "missing")
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows in chain, got %v", err)
	}
}

func TestSummarize_PendingWithoutMemberships(t *testing.T) {
	s := NewSummarizer(
		&fakeUsers{users: map[string]*user.User{"u1": {ID: "u1"}}},
		&fakeMemberships{byUser: map[string][]org.Membership{}},
		&fakeReports{},
	)

	summary, err := s.Summarize(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.Status != StatusPending {
		t.Errorf("expected Pending, got %q", summary.Status)
	}
	if summary.OrgID != nil {
		t.Errorf("expected nil org id, got %v", *summary.OrgID)
	}
	if summary.MembersCount != 0 || summary.ExposedCount != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if summary.LastUpdatedAt != nil {
		t.Errorf("expected nil lastUpdatedAt, got %v", summary.LastUpdatedAt)
	}
}

func TestSummarize_ActiveWithOrgReport(t *testing.T) {
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	orgID := "org-a"

	s := NewSummarizer(
		&fakeUsers{users: map[string]*user.User{"u1": {ID: "u1"}}},
		&fakeMemberships{
			byUser: map[string][]org.Membership{
				"u1": {{ID: "m1", UserID: "u1", OrgID: orgID}},
			},
			counts: map[string]int64{orgID: 12},
		},
		&fakeReports{byOrg: map[string]*report.Report{
			orgID: {ID: "r1", OrgID: &orgID, ExposedCount: 4, LastUpdatedAt: updated},
		}},
	)

	summary, err := s.Summarize(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.Status != StatusActive {
		t.Errorf("expected Active, got %q", summary.Status)
	}
	if summary.OrgID == nil || *summary.OrgID != orgID {
		t.Errorf("expected org id %q, got %v", orgID, summary.OrgID)
	}
	if summary.MembersCount != 12 {
		t.Errorf("expected 12 members, got %d", summary.MembersCount)
	}
	if summary.ExposedCount != 4 {
		t.Errorf("expected exposed count 4, got %d", summary.ExposedCount)
	}
	if summary.LastUpdatedAt == nil || !summary.LastUpdatedAt.Equal(updated) {
		t.Errorf("expected lastUpdatedAt %v, got %v", updated, summary.LastUpdatedAt)
	}
}

func TestSummarize_ActiveWithoutOrgReport(t *testing.T) {
	s := NewSummarizer(
		&fakeUsers{users: map[string]*user.User{"u1": {ID: "u1"}}},
		&fakeMemberships{
			byUser: map[string][]org.Membership{
				"u1": {{ID: "m1", UserID: "u1", OrgID: "org-a"}},
			},
			counts: map[string]int64{"org-a": 3},
		},
		&fakeReports{},
	)

	summary, err := s.Summarize(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.Status != StatusActive {
		t.Errorf("expected Active, got %q", summary.Status)
	}
	if summary.ExposedCount != 0 || summary.LastUpdatedAt != nil {
		t.Errorf("expected zero exposure without a report, got %+v", summary)
	}
}

func TestSummarize_FirstMembershipWins(t *testing.T) {
	s := NewSummarizer(
		&fakeUsers{users: map[string]*user.User{"u1": {ID: "u1"}}},
		&fakeMemberships{
			byUser: map[string][]org.Membership{
				"u1": {
					{ID: "m1", UserID: "u1", OrgID: "org-first"},
					{ID: "m2", UserID: "u1", OrgID: "org-second"},
				},
			},
			counts: map[string]int64{"org-first": 5, "org-second": 99},
		},
		&fakeReports{},
	)

	summary, err := s.Summarize(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary.OrgID == nil || *summary.OrgID != "org-first" {
		t.Errorf("expected first membership's org, got %v", summary.OrgID)
	}
	if summary.MembersCount != 5 {
		t.Errorf("expected first org's member count, got %d", summary.MembersCount)
	}
}

func TestSummarize_ReportLookupFailure(t *testing.T) {
	s := NewSummarizer(
		&fakeUsers{users: map[string]*user.User{"u1": {ID: "u1"}}},
		&fakeMemberships{
			byUser: map[string][]org.Membership{
				"u1": {{ID: "m1", UserID: "u1", OrgID: "org-a"}},
			},
		},
		&fakeReports{err: errors.New("db down")},
	)

	if _, err := s.Summarize(context.Background(), "u1"); err == nil {
		t.Fatal("expected report lookup failure to surface")
	}
}
