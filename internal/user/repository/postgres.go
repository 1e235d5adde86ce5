package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"identity-service/internal/user/domain"
)

const userColumns = "id, email, password_hash, full_name, role, is_active, created_at, updated_at"

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for
// persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// GetByEmail returns the user with the given email, active or not, or nil if
// not found. It returns an error only for database failures.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	return scanUser(row)
}

// Create persists the user. The user must have ID set; it is not assigned by
// this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, role, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, string(u.Role), u.Active, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// UpdateProfile sets the user's full name and returns the updated row, or nil
// if the user does not exist.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, fullName string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE users SET full_name = $2, updated_at = $3 WHERE id = $1 RETURNING `+userColumns,
		id, fullName, time.Now().UTC(),
	)
	return scanUser(row)
}

// UpdateByAdmin updates any of full name, role, and active flag; nil fields
// are left unchanged. Returns the updated row, or nil if the user does not
// exist.
func (r *PostgresRepository) UpdateByAdmin(ctx context.Context, id string, fullName *string, role *domain.Role, active *bool) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE users SET
			full_name = COALESCE($2, full_name),
			role = COALESCE($3, role),
			is_active = COALESCE($4, is_active),
			updated_at = $5
		 WHERE id = $1 RETURNING `+userColumns,
		id, fullName, (*string)(role), active, time.Now().UTC(),
	)
	return scanUser(row)
}

// Deactivate clears the user's active flag. Rows are never hard-deleted.
func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET is_active = FALSE, updated_at = $2 WHERE id = $1",
		id, time.Now().UTC(),
	)
	return err
}

// ListActive returns active users ordered by creation time descending.
func (r *PostgresRepository) ListActive(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_active = TRUE ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CountActive returns the number of active users.
func (r *PostgresRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE is_active = TRUE").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}
