package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// timeLayout is a fixed-width UTC format so that persisted timestamps
// compare correctly as text in range queries.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// SQLiteStore implements Repository and SettingsStore on a local SQLite
// database.
type SQLiteStore struct {
	db *sqlx.DB
}

// OpenSQLiteStore opens (or creates) the database at path, applies
// pragmas and migrations, and backfills any missing columns additively.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dsn := "file:" + filepath.ToSlash(abs) + "?_pragma=busy_timeout(5000)"

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying pragmas: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// migrate creates tables if absent and evolves the schema additively:
// missing columns are added and backfilled, never dropped or rewritten.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	notes TEXT,
	due_date TEXT,
	completed INTEGER NOT NULL DEFAULT 0,
	notify_on_complete INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	completed_at TEXT
);
	`); err != nil {
		return err
	}

	cols, err := s.tableColumns(ctx, "todos")
	if err != nil {
		return err
	}
	if !cols["created_at"] {
		if _, err := s.db.ExecContext(ctx, `ALTER TABLE todos ADD COLUMN created_at TEXT`); err != nil {
			return err
		}
		now := time.Now().UTC().Format(timeLayout)
		if _, err := s.db.ExecContext(ctx, `UPDATE todos SET created_at = ? WHERE created_at IS NULL`, now); err != nil {
			return err
		}
	}
	if !cols["notify_on_complete"] {
		if _, err := s.db.ExecContext(ctx, `ALTER TABLE todos ADD COLUMN notify_on_complete INTEGER NOT NULL DEFAULT 0`); err != nil {
			return err
		}
	}

	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_todos_completed ON todos (completed, completed_at)`); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS app_settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	email_recipient TEXT
);
	`); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR IGNORE INTO app_settings (id, email_recipient) VALUES (1, NULL)`)
	return err
}

func (s *SQLiteStore) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.db.QueryxContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name, typ string
			notnull   int
			dflt      sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// todoRow mirrors the table layout; timestamps stay text until decoded.
type todoRow struct {
	ID               int64          `db:"id"`
	Title            string         `db:"title"`
	Notes            sql.NullString `db:"notes"`
	DueDate          sql.NullString `db:"due_date"`
	Completed        bool           `db:"completed"`
	NotifyOnComplete bool           `db:"notify_on_complete"`
	CreatedAt        string         `db:"created_at"`
	CompletedAt      sql.NullString `db:"completed_at"`
}

func (r todoRow) decode() Todo {
	t := Todo{
		ID:               r.ID,
		Title:            r.Title,
		Completed:        r.Completed,
		NotifyOnComplete: r.NotifyOnComplete,
	}
	if r.Notes.Valid && r.Notes.String != "" {
		notes := r.Notes.String
		t.Notes = &notes
	}
	if r.DueDate.Valid && r.DueDate.String != "" {
		due := r.DueDate.String
		t.DueDate = &due
	}
	if ts, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		t.CreatedAt = ts
	}
	if r.CompletedAt.Valid {
		if ts, err := time.Parse(time.RFC3339, r.CompletedAt.String); err == nil {
			t.CompletedAt = &ts
		}
	}
	return t
}

func (s *SQLiteStore) Create(ctx context.Context, input CreateInput) (Todo, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Todo{}, ErrTitleRequired
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (title, notes, due_date, completed, notify_on_complete, created_at, completed_at)
		VALUES (?, ?, ?, 0, ?, ?, NULL)
	`, title, nullable(strings.TrimSpace(input.Notes)), nullable(input.DueDate), input.NotifyOnComplete, now.Format(timeLayout))
	if err != nil {
		return Todo{}, fmt.Errorf("inserting todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Todo{}, err
	}
	return s.GetByID(ctx, id)
}

func (s *SQLiteStore) List(ctx context.Context, status Status) ([]Todo, error) {
	var query string
	switch status {
	case StatusActive:
		query = `SELECT * FROM todos WHERE completed = 0 ORDER BY created_at DESC`
	case StatusCompleted:
		query = `SELECT * FROM todos WHERE completed = 1 ORDER BY completed_at DESC`
	default:
		query = `SELECT * FROM todos ORDER BY completed ASC, created_at DESC`
	}

	var rows []todoRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	out := make([]Todo, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.decode())
	}
	return out, nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (Todo, error) {
	var row todoRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM todos WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Todo{}, ErrNotFound
	}
	if err != nil {
		return Todo{}, fmt.Errorf("loading todo %d: %w", id, err)
	}
	return row.decode(), nil
}

func (s *SQLiteStore) SetCompleted(ctx context.Context, id int64, completed bool) (Todo, error) {
	var completedAt any
	if completed {
		completedAt = time.Now().UTC().Format(timeLayout)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE todos SET completed = ?, completed_at = ? WHERE id = ?`,
		completed, completedAt, id)
	if err != nil {
		return Todo{}, fmt.Errorf("updating completion for todo %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Todo{}, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *SQLiteStore) UpdateDetails(ctx context.Context, id int64, title, notes string) (Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Todo{}, ErrTitleRequired
	}
	res, err := s.db.ExecContext(ctx, `UPDATE todos SET title = ?, notes = ? WHERE id = ?`,
		title, nullable(strings.TrimSpace(notes)), id)
	if err != nil {
		return Todo{}, fmt.Errorf("updating todo %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Todo{}, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CompletedInRange(ctx context.Context, start, end time.Time) ([]Todo, error) {
	var rows []todoRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM todos
		WHERE completed = 1
		  AND completed_at >= ?
		  AND completed_at < ?
		ORDER BY completed_at ASC
	`, start.UTC().Format(timeLayout), end.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("querying completed range: %w", err)
	}
	out := make([]Todo, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.decode())
	}
	return out, nil
}

func (s *SQLiteStore) EmailRecipient(ctx context.Context) (string, error) {
	var recipient sql.NullString
	err := s.db.GetContext(ctx, &recipient, `SELECT email_recipient FROM app_settings WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading email recipient: %w", err)
	}
	return recipient.String, nil
}

func (s *SQLiteStore) SetEmailRecipient(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (id, email_recipient) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET email_recipient = excluded.email_recipient
	`, email)
	if err != nil {
		return fmt.Errorf("storing email recipient: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
