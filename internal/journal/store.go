package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"shelfsync/internal/config"
)

// Operation names a forwarded mutation.
type Operation string

const (
	OpIgnore Operation = "ignore"
	OpDelete Operation = "delete"
)

// Entry is one forwarded mutation.
type Entry struct {
	ID         int64
	RequestID  string
	Agent      string
	Operation  Operation
	CategoryID string
	FolderPath []string
	Success    bool
	// Message is the agent's reply, or the local error text when the agent
	// could not be reached.
	Message   string
	ErrorKind string
	CreatedAt time.Time
}

// Path renders category and folder path as one slash-separated string.
func (e Entry) Path() string {
	return strings.Join(append([]string{e.CategoryID}, e.FolderPath...), "/")
}

// Filter narrows List results. Zero values match everything; Limit zero
// means 50.
type Filter struct {
	Agent string
	Limit int
}

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	defaultListLimit        = 50
	timeLayout              = time.RFC3339Nano
)

// Open initializes or connects to the journal database under the state dir.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.JournalPath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Record appends entry and returns its id. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	ctx = ensureContext(ctx)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	folder, err := encodeFolder(entry.FolderPath)
	if err != nil {
		return 0, err
	}
	var id int64
	err = retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO mutations (request_id, agent, operation, category_id, folder_path, success, message, error_kind, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.RequestID,
			entry.Agent,
			string(entry.Operation),
			entry.CategoryID,
			folder,
			boolToInt(entry.Success),
			nullableString(entry.Message),
			nullableString(entry.ErrorKind),
			entry.CreatedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("record mutation: %w", err)
	}
	return id, nil
}

// List returns the newest entries first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Entry, error) {
	ctx = ensureContext(ctx)
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := `SELECT id, request_id, agent, operation, category_id, folder_path, success, message, error_kind, created_at FROM mutations`
	args := make([]any, 0, 2)
	if agent := strings.TrimSpace(filter.Agent); agent != "" {
		query += " WHERE agent = ?"
		args = append(args, agent)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list mutations: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mutations: %w", err)
	}
	return out, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry     Entry
		operation string
		folder    string
		success   int
		message   sql.NullString
		errorKind sql.NullString
		created   string
	)
	if err := scanner.Scan(&entry.ID, &entry.RequestID, &entry.Agent, &operation, &entry.CategoryID, &folder, &success, &message, &errorKind, &created); err != nil {
		return Entry{}, fmt.Errorf("scan mutation: %w", err)
	}
	entry.Operation = Operation(operation)
	if err := json.Unmarshal([]byte(folder), &entry.FolderPath); err != nil {
		return Entry{}, fmt.Errorf("decode folder_path %q: %w", folder, err)
	}
	entry.Success = success != 0
	entry.Message = message.String
	entry.ErrorKind = errorKind.String
	ts, err := time.Parse(timeLayout, created)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	entry.CreatedAt = ts
	return entry, nil
}

// encodeFolder stores folder paths as JSON arrays since components may
// themselves contain slashes.
func encodeFolder(path []string) (string, error) {
	if path == nil {
		path = []string{}
	}
	data, err := json.Marshal(path)
	if err != nil {
		return "", fmt.Errorf("encode folder_path: %w", err)
	}
	return string(data), nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
