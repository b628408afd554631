package core

import (
	"context"
	"fmt"
)

// AuditStore persists audit log entries. Implemented by AuditRepository;
// tests substitute an in-memory store.
type AuditStore interface {
	InsertEntry(ctx context.Context, entry *AuditLogEntry) error
}

// Volatile fields excluded from update diffs. A write that only touched
// these would otherwise pollute the trail with no-op entries.
var defaultIgnoredDiffKeys = []string{"createdAt", "updatedAt", "deletedAt"}

// AuditListener is the built-in bus subscriber. It classifies each event,
// computes the minimal before/after diff for updates, and persists one
// immutable AuditLogEntry. It runs outside the producing transaction.
type AuditListener struct {
	store       AuditStore
	ignoredKeys []string
}

func NewAuditListener(store AuditStore) *AuditListener {
	return &AuditListener{store: store, ignoredKeys: defaultIgnoredDiffKeys}
}

func (l *AuditListener) Name() string { return "audit-listener" }

// Handle persists the audit record for one event. Classification:
// auth events carry no data, creates record the after image, deletes the
// before image, and updates store only the diffed fields — an update whose
// diff is empty persists nothing at all.
func (l *AuditListener) Handle(ctx context.Context, ev Event) error {
	entry := &AuditLogEntry{
		ID:          ev.ID,
		UserID:      ev.Actor.UserID,
		ActorName:   ev.Actor.Name,
		EventType:   ev.Type,
		Description: ev.Description,
		EntityName:  ev.EntityName,
		EntityID:    ev.EntityID,
		IPAddress:   ev.Actor.IPAddress,
		UserAgent:   ev.Actor.UserAgent,
		CreatedAt:   ev.OccurredAt,
	}

	switch ev.Type.Kind() {
	case KindAuth:
		// No data payload.
	case KindCreate:
		entry.UpdatedData = ev.After
	case KindDelete:
		entry.PreviousData = ev.Before
	case KindUpdate:
		d := Diff(ev.Before, ev.After, l.ignoredKeys)
		if len(d.ChangedPaths) == 0 {
			return nil
		}
		entry.PreviousData = d.Before
		entry.UpdatedData = d.After
	}

	if err := l.store.InsertEntry(ctx, entry); err != nil {
		return fmt.Errorf("persist audit entry for event %s: %w", ev.ID, err)
	}
	return nil
}
