package repository

import (
	"context"
	"database/sql"
	"time"

	"identity-service/internal/session/domain"
)

const sessionColumns = "id, user_id, secret_hash, device, ip_address, expires_at, created_at, updated_at"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db
// for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, secret_hash, device, ip_address, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.SecretHash, s.Device, s.IPAddress, s.ExpiresAt, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

// FindLiveByUser returns the user's sessions with expires_at >= now, newest
// first. Expired rows are excluded but not deleted here.
func (r *PostgresRepository) FindLiveByUser(ctx context.Context, userID string, now time.Time) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE user_id = $1 AND expires_at >= $2 ORDER BY created_at DESC",
		userID, now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.UserID, &s.SecretHash, &s.Device, &s.IPAddress, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Rotate replaces the session's secret hash, device, address, and expiry in a
// single UPDATE keyed by id. After it commits, the previous secret no longer
// matches any stored hash.
func (r *PostgresRepository) Rotate(ctx context.Context, id, secretHash, device, ipAddress string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET secret_hash = $2, device = $3, ip_address = $4, expires_at = $5, updated_at = $6
		 WHERE id = $1`,
		id, secretHash, device, ipAddress, expiresAt, time.Now().UTC(),
	)
	return err
}

// DeleteByID removes the session with the given id. Deleting a missing row is
// not an error.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id)
	return err
}

// DeleteAllForUser removes every session belonging to the user.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = $1", userID)
	return err
}

// DeleteExpiredForUser removes the user's sessions with expires_at < now.
func (r *PostgresRepository) DeleteExpiredForUser(ctx context.Context, userID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id = $1 AND expires_at < $2",
		userID, now,
	)
	return err
}

// EnforceCap deletes the user's oldest sessions beyond max, keeping the max
// most recently created.
func (r *PostgresRepository) EnforceCap(ctx context.Context, userID string, max int) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE id IN (
			SELECT id FROM sessions WHERE user_id = $1
			ORDER BY created_at DESC OFFSET $2
		 )`,
		userID, max,
	)
	return err
}
