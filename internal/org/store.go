package org

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides read-only membership lookups.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new membership store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ListByUser returns all memberships held by the given user.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Membership, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT uuid, user_uuid, org_uuid, created_at
		 FROM memberships WHERE user_uuid = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing memberships: %w", err)
	}
	defer rows.Close()

	var memberships []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.ID, &m.UserID, &m.OrgID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning membership row: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// CountByOrg returns the number of memberships in the given organization.
func (s *Store) CountByOrg(ctx context.Context, orgID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM memberships WHERE org_uuid = $1`, orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting memberships: %w", err)
	}
	return count, nil
}
