package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepository persists and queries the append-only audit trail. Entries
// are immutable once written; there are no update or delete paths.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) InsertEntry(ctx context.Context, entry *AuditLogEntry) error {
	prev, err := marshalData(entry.PreviousData)
	if err != nil {
		return fmt.Errorf("encode previous data: %w", err)
	}
	next, err := marshalData(entry.UpdatedData)
	if err != nil {
		return fmt.Errorf("encode updated data: %w", err)
	}

	const insertSQL = `
		INSERT INTO audit_log_entries
			(id, user_id, actor_name, event_type, description, entity_name, entity_id,
			 previous_data, updated_data, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.pool.Exec(ctx, insertSQL,
		entry.ID, entry.UserID, entry.ActorName, string(entry.EventType), entry.Description,
		entry.EntityName, entry.EntityID, prev, next, entry.IPAddress, entry.UserAgent, entry.CreatedAt)
	if entry.UserID != nil && isForeignKeyViolation(err) {
		// The gateway issued an actor id this database has no user row for.
		// The trail must not lose the entry over it: actor_name is already
		// denormalized, so null the reference and keep the record.
		entry.UserID = nil
		_, err = r.pool.Exec(ctx, insertSQL,
			entry.ID, nil, entry.ActorName, string(entry.EventType), entry.Description,
			entry.EntityName, entry.EntityID, prev, next, entry.IPAddress, entry.UserAgent, entry.CreatedAt)
	}
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// AuditFilter narrows an audit listing. Zero values mean "no constraint".
type AuditFilter struct {
	UserID     *uuid.UUID
	EventType  EventType
	EntityName string
	EntityID   string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// ListEntries returns a page of audit entries, newest first, plus the total
// count matching the filter.
func (r *AuditRepository) ListEntries(ctx context.Context, f AuditFilter) ([]AuditLogEntry, int, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.EventType != "" {
		add("event_type = $%d", string(f.EventType))
	}
	if f.EntityName != "" {
		add("entity_name = $%d", f.EntityName)
	}
	if f.EntityID != "" {
		add("entity_id = $%d", f.EntityID)
	}
	if !f.From.IsZero() {
		add("created_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("created_at <= $%d", f.To)
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_log_entries "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`
		SELECT id, user_id, actor_name, event_type, description, entity_name, entity_id,
		       previous_data, updated_data, ip_address, user_agent, created_at
		FROM audit_log_entries %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []AuditLogEntry
	for rows.Next() {
		var e AuditLogEntry
		var prev, next []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.ActorName, &e.EventType, &e.Description,
			&e.EntityName, &e.EntityID, &prev, &next, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		if e.PreviousData, err = unmarshalData(prev); err != nil {
			return nil, 0, fmt.Errorf("decode previous data: %w", err)
		}
		if e.UpdatedData, err = unmarshalData(next); err != nil {
			return nil, 0, fmt.Errorf("decode updated data: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, total, nil
}

func marshalData(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func unmarshalData(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}
