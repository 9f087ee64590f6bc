package repository

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"uleaf-admin/internal/domain"
)

const memoryLogCapacity = 500

// MemoryActivityLog is used when no database is configured. It logs every
// entry and keeps the most recent ones for the activity endpoint.
type MemoryActivityLog struct {
	Logger *slog.Logger

	mu      sync.Mutex
	nextID  int64
	entries []domain.ActivityLog
}

func (m *MemoryActivityLog) Record(ctx context.Context, entry domain.ActivityLog) error {
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now().UTC()
	}
	if entry.Type == "" {
		entry.Type = domain.LogInfo
	}

	m.mu.Lock()
	m.nextID++
	entry.ID = m.nextID
	m.entries = append(m.entries, entry)
	if len(m.entries) > memoryLogCapacity {
		m.entries = m.entries[len(m.entries)-memoryLogCapacity:]
	}
	m.mu.Unlock()

	if m.Logger != nil {
		m.Logger.InfoContext(ctx, "activity", "title", entry.Title, "message", entry.Message, "actor", entry.Actor, "type", entry.Type)
	}
	return nil
}

// List returns newest first, optionally filtered by actor.
func (m *MemoryActivityLog) List(_ context.Context, actor string, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ActivityLog, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if actor != "" && m.entries[i].Actor != actor {
			continue
		}
		out = append(out, m.entries[i])
	}
	return out, nil
}
