package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/breachwatch/breachwatch/internal/org"
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
	err    error
}

func (f *fakeMemberships) ListByUser(_ context.Context, userID string) ([]org.Membership, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byUser[userID], nil
}

// fakeReports records every upsert it receives, counts and timestamps both.
type fakeReports struct {
	mu          sync.Mutex
	personal    map[string]int
	personalAt  map[string]time.Time
	orgs        map[string]int
	orgsAt      map[string]time.Time
	personalErr error
	orgErr      map[string]error
}

func newFakeReports() *fakeReports {
	return &fakeReports{
		personal:   make(map[string]int),
		personalAt: make(map[string]time.Time),
		orgs:       make(map[string]int),
		orgsAt:     make(map[string]time.Time),
	}
}

func (f *fakeReports) UpsertPersonal(_ context.Context, userID string, count int, updatedAt time.Time) error {
	if f.personalErr != nil {
		return f.personalErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.personal[userID] = count
	f.personalAt[userID] = updatedAt
	return nil
}

func (f *fakeReports) UpsertOrg(_ context.Context, orgID string, count int, updatedAt time.Time) error {
	if err := f.orgErr[orgID]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orgs[orgID] = count
	f.orgsAt[orgID] = updatedAt
	return nil
}

func member(userID, orgID string) org.Membership {
	return org.Membership{
		ID:        "m-" + userID + "-" + orgID,
		UserID:    userID,
		OrgID:     orgID,
		CreatedAt: time.Now(),
	}
}

func testUser(id string) *user.User {
	return &user.User{ID: id, Email: id + "@example.com"}
}

func TestRecord_UnknownUserIsSilentNoOp(t *testing.T) {
	reports := newFakeReports()
	agg := NewAggregator(&fakeUsers{users: map[string]*user.User{}}, &fakeMemberships{}, reports)

	err := agg.Record(context.Background(), "missing", 5, map[string]int{"org-1": 3})
	if err != nil {
		t.Fatalf("expected nil error for unknown user, got %v", err)
	}
	if len(reports.personal) != 0 || len(reports.orgs) != 0 {
		t.Errorf("expected no upserts, got personal=%v orgs=%v", reports.personal, reports.orgs)
	}
}

func TestRecord_PersonalAndAuthorizedOrgs(t *testing.T) {
	reports := newFakeReports()
	agg := NewAggregator(
		&fakeUsers{users: map[string]*user.User{"u1": testUser("u1")}},
		&fakeMemberships{byUser: map[string][]org.Membership{
			"u1": {member("u1", "org-a"), member("u1", "org-b")},
		}},
		reports,
	)

	err := agg.Record(context.Background(), "u1", 3, map[string]int{"org-a": 5, "org-b": 7})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if reports.personal["u1"] != 3 {
		t.Errorf("expected personal count 3, got %d", reports.personal["u1"])
	}
	if reports.orgs["org-a"] != 5 || reports.orgs["org-b"] != 7 {
		t.Errorf("expected org counts 5/7, got %v", reports.orgs)
	}
}

func TestRecord_NonMemberOrgSilentlyDropped(t *testing.T) {
	reports := newFakeReports()
	agg := NewAggregator(
		&fakeUsers{users: map[string]*user.User{"u1": testUser("u1")}},
		&fakeMemberships{byUser: map[string][]org.Membership{}},
		reports,
	)

	err := agg.Record(context.Background(), "u1", 3, map[string]int{"org-x": 5})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if reports.personal["u1"] != 3 {
		t.Errorf("expected personal count 3, got %d", reports.personal["u1"])
	}
	if _, ok := reports.orgs["org-x"]; ok {
		t.Error("expected non-member org entry to be dropped")
	}
}

func TestRecord_NegativeCountsClamped(t *testing.T) {
	reports := newFakeReports()
	agg := NewAggregator(
		&fakeUsers{users: map[string]*user.User{"u1": testUser("u1")}},
		&fakeMemberships{byUser: map[string][]org.Membership{
			"u1": {member("u1", "org-a")},
		}},
		reports,
	)

	err := agg.Record(context.Background(), "u1", -10, map[string]int{"org-a": -2147483648})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if got := reports.personal["u1"]; got != 0 {
		t.Errorf("expected personal count clamped to 0, got %d", got)
	}
	if got := reports.orgs["org-a"]; got != 0 {
		t.Errorf("expected org count clamped to 0, got %d", got)
	}
}

func TestRecord_OverwriteNotAccumulate(t *testing.T) {
	reports := newFakeReports()
	agg := NewAggregator(
		&fakeUsers{users: map[string]*user.User{"u1": testUser("u1")}},
		&fakeMemberships{byUser: map[string][]org.Membership{
			"u1": {member("u1", "org-a")},
		}},
		reports,
	)

	for _, count := range []int{9, 4} {
		if err := agg.Record(context.Background(), "u1", count, map[string]int{"org-a": count}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if reports.personal["u1"] != 4 {
		t.Errorf("expected second report to overwrite personal count, got %d", reports.personal["u1"])
	}
	if reports.orgs["org-a"] != 4 {
		t.Errorf("expected second report to overwrite org count, got %d", reports.orgs["org-a"])
	}
}

func TestRecord_AdvancesLastUpdatedAt(t *testing.T) {
	reports := newFakeReports()
	agg := NewAggregator(
		&fakeUsers{users: map[string]*user.User{"u1": testUser("u1")}},
		&fakeMemberships{byUser: map[string][]org.Membership{
			"u1": {member("u1", "org-a")},
		}},
		reports,
	)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return clock }

	if err := agg.Record(context.Background(), "u1", 9, map[string]int{"org-a": 9}); err != nil {
		t.Fatalf("first Record failed: %v", err)
	}
	firstPersonal := reports.personalAt["u1"]
	firstOrg := reports.orgsAt["org-a"]
	if !firstPersonal.Equal(clock) || !firstOrg.Equal(clock) {
		t.Fatalf("expected first timestamps %v, got personal=%v org=%v", clock, firstPersonal, firstOrg)
	}

	clock = clock.Add(3 * time.Second)
	if err := agg.Record(context.Background(), "u1", 9, map[string]int{"org-a": 9}); err != nil {
		t.Fatalf("second Record failed: %v", err)
	}

	// Even with an unchanged count, a later submission must refresh the
	// timestamps; they advance strictly.
	if !reports.personalAt["u1"].After(firstPersonal) {
		t.Errorf("expected personal last_updated_at to advance, got %v then %v", firstPersonal, reports.personalAt["u1"])
	}
	if !reports.orgsAt["org-a"].After(firstOrg) {
		t.Errorf("expected org last_updated_at to advance, got %v then %v", firstOrg, reports.orgsAt["org-a"])
	}
}

func TestRecord_ContinuesPastFailedEntries(t *testing.T) {
	reports := newFakeReports()
	boom := errors.New("saving org report: connection reset")
	reports.orgErr = map[string]error{"org-a": boom}

	agg := NewAggregator(
		&fakeUsers{users: map[string]*user.User{"u1": testUser("u1")}},
		&fakeMemberships{byUser: map[string][]org.Membership{
			"u1": {member("u1", "org-a"), member("u1", "org-b")},
		}},
		reports,
	)

	err := agg.Record(context.Background(), "u1", 1, map[string]int{"org-a": 5, "org-b": 7})
	if err == nil {
		t.Fatal("expected aggregate error when an authorized entry fails")
	}
	if !errors.Is(err, boom) {
		t.Errorf("expected aggregate error to wrap the failing save, got %v", err)
	}
	if reports.orgs["org-b"] != 7 {
		t.Errorf("expected remaining entries to still be saved, got %v", reports.orgs)
	}
	if reports.personal["u1"] != 1 {
		t.Errorf("expected personal report saved despite org failure, got %v", reports.personal)
	}
}

func TestRecord_MembershipLoadFailureAborts(t *testing.T) {
	reports := newFakeReports()
	agg := NewAggregator(
		&fakeUsers{users: map[string]*user.User{"u1": testUser("u1")}},
		&fakeMemberships{err: errors.New("db down")},
		reports,
	)

	err := agg.Record(context.Background(), "u1", 3, nil)
	if err == nil {
		t.Fatal("expected error when memberships cannot be loaded")
	}
	if len(reports.personal) != 0 {
		t.Error("expected no personal upsert when memberships cannot be loaded")
	}
}

func TestClampCount(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-1, 0},
		{0, 0},
		{42, 42},
		{-2147483648, 0},
	}
	for _, tt := range tests {
		if got := clampCount(tt.in); got != tt.want {
			t.Errorf("clampCount(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
