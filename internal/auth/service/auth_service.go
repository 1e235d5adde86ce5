// Package service implements the auth core: signup, login, refresh with
// rotation, logout, and the current-user lookup. It never touches transport
// concepts; the HTTP layer maps its sentinel errors to status codes.
package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"identity-service/internal/audit"
	"identity-service/internal/security"
	sessiondomain "identity-service/internal/session/domain"
	userdomain "identity-service/internal/user/domain"
)

// Sentinel errors for the auth service; the HTTP handler maps them to status
// codes. InvalidCredentials deliberately merges "no such user", "inactive",
// and "wrong password" so responses never reveal which one occurred.
var (
	ErrEmailInUse          = errors.New("email already in use")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
)

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	Create(ctx context.Context, s *sessiondomain.Session) error
	FindLiveByUser(ctx context.Context, userID string, now time.Time) ([]*sessiondomain.Session, error)
	Rotate(ctx context.Context, id, secretHash, device, ipAddress string, expiresAt time.Time) error
	DeleteByID(ctx context.Context, id string) error
	DeleteAllForUser(ctx context.Context, userID string) error
	DeleteExpiredForUser(ctx context.Context, userID string, now time.Time) error
	EnforceCap(ctx context.Context, userID string, max int) error
}

// TokenPair holds a freshly issued access and refresh token. The refresh
// token is returned to the caller exactly once; only its hash is persisted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is the outcome of Login: the sanitized user plus both tokens.
type AuthResult struct {
	User   *userdomain.SanitizedUser
	Tokens TokenPair
}

// AuthService coordinates the user repo, session repo, hasher, and token
// provider into the auth flows.
type AuthService struct {
	userRepo    UserRepo
	sessionRepo SessionRepo
	hasher      *security.Hasher
	tokens      *security.TokenProvider
	sessionCap  int
	auditLogger audit.AuditLogger
	now         func() time.Time
}

// NewAuthService returns an AuthService with the given dependencies.
// auditLogger may be nil; then no audit events are recorded.
func NewAuthService(
	userRepo UserRepo,
	sessionRepo SessionRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	sessionCap int,
	auditLogger audit.AuditLogger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokens:      tokens,
		sessionCap:  sessionCap,
		auditLogger: auditLogger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Signup creates a user with the given email and password. The email is
// case-normalized and must be unused by any user, active or not. Returns the
// sanitized user; the password hash never leaves this boundary.
func (s *AuthService) Signup(ctx context.Context, email, password, fullName string) (*userdomain.SanitizedUser, error) {
	email = normalizeEmail(email)
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		FullName:     strings.TrimSpace(fullName),
		Role:         userdomain.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.audit(ctx, user.ID, audit.ActionSignup, "user", "", "")
	return user.Sanitized(), nil
}

// Login authenticates with email/password, issues a token pair, and records a
// session for the device. A hash comparison runs even when no user exists, so
// "unknown email" and "wrong password" take comparable time.
func (s *AuthService) Login(ctx context.Context, email, password, device, ipAddress string) (*AuthResult, error) {
	email = normalizeEmail(email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	matches := false
	if user != nil {
		matches = s.hasher.Compare(user.PasswordHash, password)
	} else {
		s.hasher.DummyCompare(password)
	}
	if user == nil || !user.Active || !matches {
		s.audit(ctx, "", audit.ActionLoginFailure, "session", ipAddress, "")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	secretHash, err := s.hasher.HashRefreshToken(pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess := &sessiondomain.Session{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		SecretHash: secretHash,
		Device:     orDefault(device, "Unknown Device"),
		IPAddress:  orDefault(ipAddress, "Unknown IP"),
		ExpiresAt:  now.Add(s.tokens.RefreshTTL()),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.cleanupSessions(ctx, user.ID)
	s.audit(ctx, user.ID, audit.ActionLogin, "session", ipAddress, "")
	return &AuthResult{User: user.Sanitized(), Tokens: pair}, nil
}

// Refresh rotates the session matching the presented refresh token and
// returns a new token pair. The presented token must verify as a refresh
// token bound to userID; its secret is then matched by content against every
// live session, since the raw token carries no session identifier. After
// rotation the old token's hash no longer matches any record, so a concurrent
// replay of it fails here with ErrInvalidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, userID, refreshToken, device, ipAddress string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Subject != userID {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, ErrForbidden
	}
	now := s.now()
	matched, err := s.findMatchingSession(ctx, userID, refreshToken, now)
	if err != nil {
		return nil, err
	}
	if matched == nil {
		return nil, ErrInvalidRefreshToken
	}
	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	secretHash, err := s.hasher.HashRefreshToken(pair.RefreshToken)
	if err != nil {
		return nil, err
	}
	err = s.sessionRepo.Rotate(ctx, matched.ID, secretHash,
		orDefault(device, "Unknown Device"), orDefault(ipAddress, "Unknown IP"),
		now.Add(s.tokens.RefreshTTL()))
	if err != nil {
		return nil, err
	}
	s.audit(ctx, user.ID, audit.ActionRefresh, "session", ipAddress, "")
	return &pair, nil
}

// Logout revokes sessions for the user. With a refresh token, only the
// matching session is deleted (single-device logout); without one, every
// session is deleted. Idempotent: a token matching no session still succeeds.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken != "" {
		matched, err := s.findMatchingSession(ctx, userID, refreshToken, s.now())
		if err != nil {
			return err
		}
		if matched != nil {
			if err := s.sessionRepo.DeleteByID(ctx, matched.ID); err != nil {
				return err
			}
		}
	} else {
		if err := s.sessionRepo.DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
	}
	s.audit(ctx, userID, audit.ActionLogout, "session", "", "")
	return nil
}

// GetMe returns the sanitized user for userID, or ErrUserNotFound.
func (s *AuthService) GetMe(ctx context.Context, userID string) (*userdomain.SanitizedUser, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user.Sanitized(), nil
}

// findMatchingSession probes every live session for the user with the
// constant-time verifier until one matches the presented secret. O(live
// sessions), bounded by the session cap.
func (s *AuthService) findMatchingSession(ctx context.Context, userID, refreshToken string, now time.Time) (*sessiondomain.Session, error) {
	sessions, err := s.sessionRepo.FindLiveByUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	for _, sess := range sessions {
		if s.hasher.CompareRefreshToken(sess.SecretHash, refreshToken) {
			return sess, nil
		}
	}
	return nil, nil
}

func (s *AuthService) issuePair(user *userdomain.User) (TokenPair, error) {
	access, err := s.tokens.IssueAccess(user.ID, string(user.Role), user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.IssueRefresh(user.ID, string(user.Role), user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// cleanupSessions prunes expired sessions and enforces the per-user cap.
// Best-effort: failures are logged and never fail the login that triggered
// them.
func (s *AuthService) cleanupSessions(ctx context.Context, userID string) {
	if err := s.sessionRepo.DeleteExpiredForUser(ctx, userID, s.now()); err != nil {
		log.Printf("auth: prune expired sessions for %s: %v", userID, err)
	}
	if err := s.sessionRepo.EnforceCap(ctx, userID, s.sessionCap); err != nil {
		log.Printf("auth: enforce session cap for %s: %v", userID, err)
	}
}

func (s *AuthService) audit(ctx context.Context, userID, action, resource, ip, metadata string) {
	if s.auditLogger == nil {
		return
	}
	s.auditLogger.LogEvent(ctx, userID, action, resource, ip, metadata)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
