// Package audit records auth and admin events. Writes are best-effort:
// failures are logged and never abort the caller's flow.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"identity-service/internal/audit/domain"
	auditrepo "identity-service/internal/audit/repository"
)

// Actions recorded by the auth and user services.
const (
	ActionSignup       = "auth.signup"
	ActionLogin        = "auth.login"
	ActionLoginFailure = "auth.login_failure"
	ActionRefresh      = "auth.refresh"
	ActionLogout       = "auth.logout"
	ActionUserDelete   = "user.deactivate"
)

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, ip, metadata string)
}

// Logger implements AuditLogger using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns an AuditLogger that persists to repo.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not
// returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, ip, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: write %s failed: %v", action, err)
	}
}
