// Package service implements profile and admin user management. Users are
// soft-deleted only: deactivation clears the active flag and revokes every
// session the user holds.
package service

import (
	"context"
	"errors"

	"identity-service/internal/audit"
	"identity-service/internal/user/domain"
	userrepo "identity-service/internal/user/repository"
)

// ErrUserNotFound is returned when the requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// SessionRevoker is the slice of the session repository the user service
// needs for deactivation cascade.
type SessionRevoker interface {
	DeleteAllForUser(ctx context.Context, userID string) error
}

// UserUpdate carries the admin-editable fields; nil fields are unchanged.
type UserUpdate struct {
	FullName *string
	Role     *domain.Role
	Active   *bool
}

// UserPage is one page of sanitized users plus pagination metadata.
type UserPage struct {
	Data []*domain.SanitizedUser `json:"data"`
	Meta PageMeta                `json:"meta"`
}

// PageMeta describes the position of a page within the full active-user list.
type PageMeta struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// UserService implements profile and admin user operations.
type UserService struct {
	userRepo    userrepo.Repository
	sessions    SessionRevoker
	auditLogger audit.AuditLogger
}

// NewUserService returns a UserService with the given dependencies.
// auditLogger may be nil.
func NewUserService(userRepo userrepo.Repository, sessions SessionRevoker, auditLogger audit.AuditLogger) *UserService {
	return &UserService{userRepo: userRepo, sessions: sessions, auditLogger: auditLogger}
}

// GetProfile returns the sanitized user for userID, or ErrUserNotFound.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.SanitizedUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Sanitized(), nil
}

// UpdateProfile sets the user's full name and returns the updated sanitized
// user.
func (s *UserService) UpdateProfile(ctx context.Context, userID, fullName string) (*domain.SanitizedUser, error) {
	user, err := s.userRepo.UpdateProfile(ctx, userID, fullName)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Sanitized(), nil
}

// ListUsers returns one page of active users, newest first. page and limit
// are 1-based; out-of-range values are clamped.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	users, err := s.userRepo.ListActive(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	total, err := s.userRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	sanitized := make([]*domain.SanitizedUser, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitized()
	}
	totalPages := (total + limit - 1) / limit
	return &UserPage{
		Data: sanitized,
		Meta: PageMeta{
			Total:       total,
			Page:        page,
			Limit:       limit,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	}, nil
}

// GetUserByID returns the sanitized user for id, or ErrUserNotFound.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.SanitizedUser, error) {
	if id == "" {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Sanitized(), nil
}

// UpdateUserByID applies an admin update and returns the sanitized result.
func (s *UserService) UpdateUserByID(ctx context.Context, id string, update UserUpdate) (*domain.SanitizedUser, error) {
	user, err := s.userRepo.UpdateByAdmin(ctx, id, update.FullName, update.Role, update.Active)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Sanitized(), nil
}

// DeleteUserByID soft-deletes the user (active=false) and revokes all of
// their sessions. The row itself is never removed.
func (s *UserService) DeleteUserByID(ctx context.Context, id string) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.userRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.DeleteAllForUser(ctx, id); err != nil {
		return err
	}
	if s.auditLogger != nil {
		s.auditLogger.LogEvent(ctx, id, audit.ActionUserDelete, "user", "", "")
	}
	return nil
}
