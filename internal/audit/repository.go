// Package audit keeps a persistent log of parameter changes.
//
// Recorder is a router.Observer that hands every change to a Repository on
// its own goroutine; SQLiteRepository stores them in the audit_log table.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// List paging bounds.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// timeFormat sorts lexically in time order, unlike RFC3339Nano.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// Entry is one recorded parameter change.
type Entry struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Tags      string    `json:"tags"`
	Args      []any     `json:"args"`
	Origin    string    `json:"origin,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter controls which entries List returns.
type Filter struct {
	Address string    // optional: exact address
	Prefix  string    // optional: address prefix, e.g. "/send/1/"
	Origin  string    // optional: exact origin
	Since   time.Time // optional: entries at or after
	Limit   int       // default DefaultLimit, max MaxLimit
	Offset  int       // pagination offset
}

// ListResult contains a page of entries, most recent first.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository defines the interface for audit log storage.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores entries in the audit_log table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on a migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts an entry. The ID and CreatedAt are generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	args := e.Args
	if args == nil {
		args = []any{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("marshalling audit args: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, address, tags, args, origin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Address, e.Tags, string(argsJSON), e.Origin,
		e.CreatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// List returns entries matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any
	if filter.Address != "" {
		conditions = append(conditions, "address = ?")
		args = append(args, filter.Address)
	}
	if filter.Prefix != "" {
		conditions = append(conditions, "substr(address, 1, ?) = ?")
		args = append(args, len(filter.Prefix), filter.Prefix)
	}
	if filter.Origin != "" {
		conditions = append(conditions, "origin = ?")
		args = append(args, filter.Origin)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(timeFormat))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM audit_log " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting audit entries: %w", err)
	}

	query := "SELECT id, address, tags, args, origin, created_at FROM audit_log " + where +
		" ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var argsJSON, createdAt string
		if err := rows.Scan(&e.ID, &e.Address, &e.Tags, &argsJSON, &e.Origin, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		if err := json.Unmarshal([]byte(argsJSON), &e.Args); err != nil {
			return nil, fmt.Errorf("decoding audit args of %s: %w", e.ID, err)
		}
		e.CreatedAt, err = time.Parse(timeFormat, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing audit timestamp %q: %w", createdAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
