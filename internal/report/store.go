package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides database operations for exposure reports. The find-or-create
// step of an upsert is a single INSERT .. ON CONFLICT statement against a
// partial unique index, so two concurrent reports for the same user or
// organization cannot race into duplicate rows.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new report store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanReport(scan func(dest ...any) error) (*Report, error) {
	rp := &Report{}
	err := scan(&rp.ID, &rp.UserID, &rp.OrgID, &rp.ExposedCount, &rp.CreatedAt, &rp.LastUpdatedAt)
	if err != nil {
		return nil, err
	}
	return rp, nil
}

// GetPersonal retrieves the personal report for a user.
func (s *Store) GetPersonal(ctx context.Context, userID string) (*Report, error) {
	rp, err := scanReport(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT uuid, user_uuid, org_uuid, exposed_count, created_at, last_updated_at
			 FROM reports WHERE user_uuid = $1 AND org_uuid IS NULL`, userID,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("getting personal report: %w", err)
	}
	return rp, nil
}

// GetByOrg retrieves the organizational report for an organization.
func (s *Store) GetByOrg(ctx context.Context, orgID string) (*Report, error) {
	rp, err := scanReport(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT uuid, user_uuid, org_uuid, exposed_count, created_at, last_updated_at
			 FROM reports WHERE org_uuid = $1 AND user_uuid IS NULL`, orgID,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("getting org report: %w", err)
	}
	return rp, nil
}

// UpsertPersonal creates or overwrites the personal report for a user. The
// count is overwritten, not summed, and last_updated_at takes the
// caller-stamped updatedAt on every call. GREATEST backstops the
// service-level clamp so a negative value can never reach the row.
func (s *Store) UpsertPersonal(ctx context.Context, userID string, count int, updatedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reports (uuid, user_uuid, org_uuid, exposed_count, created_at, last_updated_at)
		 VALUES ($1, $2, NULL, GREATEST($3, 0), $4, $4)
		 ON CONFLICT (user_uuid) WHERE org_uuid IS NULL
		 DO UPDATE SET exposed_count = GREATEST($3, 0), last_updated_at = $4`,
		uuid.NewString(), userID, count, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting personal report: %w", err)
	}
	return nil
}

// UpsertOrg creates or overwrites the organizational report for an
// organization, with the same overwrite-and-clamp semantics as UpsertPersonal.
func (s *Store) UpsertOrg(ctx context.Context, orgID string, count int, updatedAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO reports (uuid, user_uuid, org_uuid, exposed_count, created_at, last_updated_at)
		 VALUES ($1, NULL, $2, GREATEST($3, 0), $4, $4)
		 ON CONFLICT (org_uuid) WHERE user_uuid IS NULL
		 DO UPDATE SET exposed_count = GREATEST($3, 0), last_updated_at = $4`,
		uuid.NewString(), orgID, count, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting org report: %w", err)
	}
	return nil
}
