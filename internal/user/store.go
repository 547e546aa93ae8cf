package user

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides database operations for users and pending invitations.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new user store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func scanUser(scan func(dest ...any) error) (*User, error) {
	u := &User{}
	err := scan(&u.ID, &u.Email, &u.Name, &u.AKey, &u.PrivateKey, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID retrieves a user by primary key.
func (s *Store) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT uuid, email, name, akey, private_key, created_at, updated_at
			 FROM users WHERE uuid = $1`, id,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by exact email address.
func (s *Store) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(func(dest ...any) error {
		return s.pool.QueryRow(ctx,
			`SELECT uuid, email, name, akey, private_key, created_at, updated_at
			 FROM users WHERE email = $1`, email,
		).Scan(dest...)
	})
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// CreateInvited persists a newly invited placeholder user together with its
// invitation side effect as one atomic unit. When notify is non-nil it is
// invoked before the user row is written and any error aborts the whole
// operation; when notify is nil a pending-invitation row keyed by email is
// recorded in the same transaction instead.
//
// If the transaction fails to commit after notify succeeded, the notification
// cannot be recalled; the caller still sees the error.
func (s *Store) CreateInvited(ctx context.Context, u *User, notify func(context.Context) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning invite transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if notify != nil {
		if err := notify(ctx); err != nil {
			return fmt.Errorf("dispatching invite notification: %w", err)
		}
	} else {
		_, err := tx.Exec(ctx,
			`INSERT INTO invitations (email, created_at) VALUES ($1, $2)
			 ON CONFLICT (email) DO NOTHING`,
			u.Email, time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("recording pending invitation: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO users (uuid, email, name, akey, private_key, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Name, u.AKey, u.PrivateKey, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing invite transaction: %w", err)
	}
	return nil
}
