package repository

import (
	"context"
	"time"

	"identity-service/internal/session/domain"
)

// Repository defines persistence for refresh sessions. The auth service never
// mutates session rows except through these operations.
type Repository interface {
	Create(ctx context.Context, s *domain.Session) error
	// FindLiveByUser returns the user's sessions with expires_at >= now.
	// Expired rows are excluded but not deleted; deletion is an explicit step.
	FindLiveByUser(ctx context.Context, userID string, now time.Time) ([]*domain.Session, error)
	// Rotate replaces the session's secret hash, device, address, and expiry
	// in place, preserving its identifier. Single atomic write keyed by id.
	Rotate(ctx context.Context, id, secretHash, device, ipAddress string, expiresAt time.Time) error
	DeleteByID(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) error
	DeleteExpiredForUser(ctx context.Context, userID string, now time.Time) error
	// EnforceCap deletes the user's oldest sessions beyond max, keeping the
	// max most recently created.
	EnforceCap(ctx context.Context, userID string, max int) error
}
