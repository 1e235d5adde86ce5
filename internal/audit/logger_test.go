package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"identity-service/internal/audit/domain"
)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
	err     error
}

func (r *memAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	e := *entry
	r.entries = append(r.entries, &e)
	return nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &memAuditRepo{}
	l := NewLogger(repo)

	l.LogEvent(context.Background(), "user-1", ActionLogin, "session", "203.0.113.9", "")

	if len(repo.entries) != 1 {
		t.Fatalf("entries: want 1, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Errorf("entry missing id or timestamp: %+v", e)
	}
	if e.UserID != "user-1" || e.Action != ActionLogin || e.Resource != "session" || e.IP != "203.0.113.9" {
		t.Errorf("entry fields: %+v", e)
	}
}

// Audit writes never propagate failures to the caller.
func TestLogger_LogEventSwallowsErrors(t *testing.T) {
	repo := &memAuditRepo{err: errors.New("db down")}
	l := NewLogger(repo)
	l.LogEvent(context.Background(), "user-1", ActionLogout, "session", "", "")
}
