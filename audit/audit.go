// Package audit keeps a SQLite journal of tool invocations.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"aionr2/mcp"
)

const (
	// DefaultLimit is used by Recent when limit is not positive.
	DefaultLimit = 20

	timeLayout = time.RFC3339Nano
)

// Entry is one journaled tool invocation.
type Entry struct {
	ID        string        `json:"id" yaml:"id"`
	RequestID string        `json:"request_id" yaml:"request_id"`
	Tool      string        `json:"tool" yaml:"tool"`
	Code      int           `json:"code" yaml:"code"`
	Message   string        `json:"message,omitempty" yaml:"message,omitempty"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// Journal implements mcp.Recorder on top of SQLite.
type Journal struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

var _ mcp.Recorder = (*Journal)(nil)

// Open creates or opens the journal at path. ":memory:" is accepted.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Journal{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

func createTables(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tool_invocations (
			id TEXT PRIMARY KEY,
			request_id TEXT,
			tool TEXT NOT NULL,
			code INTEGER NOT NULL,
			message TEXT,
			started_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tool_invocations_tool ON tool_invocations(tool)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) newID(t time.Time) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), j.entropy).String()
}

// Record inserts one row for inv.
func (j *Journal) Record(ctx context.Context, inv mcp.Invocation) error {
	started := inv.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO tool_invocations(id, request_id, tool, code, message, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.newID(started),
		inv.RequestID,
		inv.Tool,
		inv.Code,
		inv.Message,
		started.UTC().Format(timeLayout),
		inv.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert into tool_invocations: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, request_id, tool, code, message, started_at, duration_ms
		 FROM tool_invocations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query tool_invocations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			requestID  sql.NullString
			message    sql.NullString
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &requestID, &e.Tool, &e.Code, &message, &startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan tool_invocations row: %w", err)
		}
		e.RequestID = requestID.String
		e.Message = message.String
		if e.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("invalid started_at %q: %w", startedAt, err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
