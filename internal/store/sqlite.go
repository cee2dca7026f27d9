package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dshills/materialcheck/internal/schema"
)

// SQLite is a Repository backed by a single sqlite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema. ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// One connection: sqlite serializes writers, and ":memory:" is per-connection.
	db.SetMaxOpenConns(1)
	if err := initDB(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func initDB(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			last_reminder_sent_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			requirement_id TEXT NOT NULL,
			value TEXT NOT NULL DEFAULT '',
			file_url TEXT NOT NULL DEFAULT '',
			submitted_at TEXT NOT NULL,
			status TEXT NOT NULL,
			PRIMARY KEY (project_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS files (
			project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			id TEXT NOT NULL,
			file_name TEXT NOT NULL,
			file_type TEXT NOT NULL,
			url TEXT NOT NULL,
			uploaded_at TEXT NOT NULL,
			PRIMARY KEY (project_id, seq)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("initializing sqlite schema: %w", err)
		}
	}
	return nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func (s *SQLite) Project(ctx context.Context, id string) (*schema.Project, error) {
	var data string
	var reminded sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT data, last_reminder_sent_at FROM projects WHERE id=?`, id).Scan(&data, &reminded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", id, err)
	}
	return decodeProject(data, reminded)
}

func decodeProject(data string, reminded sql.NullString) (*schema.Project, error) {
	var p schema.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	p.LastReminderSentAt = nil
	if reminded.Valid && reminded.String != "" {
		t, err := parseTime(reminded.String)
		if err != nil {
			return nil, fmt.Errorf("decoding last_reminder_sent_at: %w", err)
		}
		p.LastReminderSentAt = &t
	}
	return &p, nil
}

func (s *SQLite) Projects(ctx context.Context) ([]schema.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data, last_reminder_sent_at FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()
	out := []schema.Project{}
	for rows.Next() {
		var data string
		var reminded sql.NullString
		if err := rows.Scan(&data, &reminded); err != nil {
			return nil, fmt.Errorf("listing projects: %w", err)
		}
		p, err := decodeProject(data, reminded)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveProject(ctx context.Context, p schema.Project) error {
	if p.ID == "" {
		return fmt.Errorf("project id is required")
	}
	var reminded sql.NullString
	if p.LastReminderSentAt != nil {
		reminded = sql.NullString{String: formatTime(*p.LastReminderSentAt), Valid: true}
	}
	p.LastReminderSentAt = nil
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO projects(id, data, last_reminder_sent_at) VALUES(?,?,?)
		ON CONFLICT(id) DO UPDATE SET data=excluded.data, last_reminder_sent_at=excluded.last_reminder_sent_at`,
		p.ID, string(data), reminded)
	if err != nil {
		return fmt.Errorf("saving project %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLite) Items(ctx context.Context, projectID string) ([]schema.SubmittedItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT requirement_id, value, file_url, submitted_at, status FROM items WHERE project_id=? ORDER BY seq`, projectID)
	if err != nil {
		return nil, fmt.Errorf("reading items: %w", err)
	}
	defer rows.Close()
	out := []schema.SubmittedItem{}
	for rows.Next() {
		var it schema.SubmittedItem
		var at, status string
		if err := rows.Scan(&it.RequirementID, &it.Value, &it.FileURL, &at, &status); err != nil {
			return nil, fmt.Errorf("reading items: %w", err)
		}
		if it.SubmittedAt, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("decoding submitted_at: %w", err)
		}
		it.Status = schema.Status(status)
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *SQLite) PutItems(ctx context.Context, projectID string, items []schema.SubmittedItem) error {
	return s.replace(ctx, "items", projectID, len(items), func(tx *sql.Tx, i int) error {
		it := items[i]
		_, err := tx.ExecContext(ctx, `INSERT INTO items(project_id, seq, requirement_id, value, file_url, submitted_at, status) VALUES(?,?,?,?,?,?,?)`,
			projectID, i, it.RequirementID, it.Value, it.FileURL, formatTime(it.SubmittedAt), string(it.Status))
		return err
	})
}

func (s *SQLite) Files(ctx context.Context, projectID string) ([]schema.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, file_name, file_type, url, uploaded_at FROM files WHERE project_id=? ORDER BY seq`, projectID)
	if err != nil {
		return nil, fmt.Errorf("reading files: %w", err)
	}
	defer rows.Close()
	out := []schema.FileRecord{}
	for rows.Next() {
		var f schema.FileRecord
		var at string
		if err := rows.Scan(&f.ID, &f.FileName, &f.FileType, &f.URL, &at); err != nil {
			return nil, fmt.Errorf("reading files: %w", err)
		}
		if f.UploadedAt, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("decoding uploaded_at: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLite) PutFiles(ctx context.Context, projectID string, files []schema.FileRecord) error {
	return s.replace(ctx, "files", projectID, len(files), func(tx *sql.Tx, i int) error {
		f := files[i]
		_, err := tx.ExecContext(ctx, `INSERT INTO files(project_id, seq, id, file_name, file_type, url, uploaded_at) VALUES(?,?,?,?,?,?,?)`,
			projectID, i, f.ID, f.FileName, f.FileType, f.URL, formatTime(f.UploadedAt))
		return err
	})
}

// replace deletes a project's rows in table and inserts n new ones in one transaction.
func (s *SQLite) replace(ctx context.Context, table, projectID string, n int, insert func(tx *sql.Tx, i int) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE id=?`, projectID).Scan(&exists); err != nil {
		return fmt.Errorf("writing %s: %w", table, err)
	}
	if exists == 0 {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE project_id=?`, projectID); err != nil {
		return fmt.Errorf("writing %s: %w", table, err)
	}
	for i := 0; i < n; i++ {
		if err := insert(tx, i); err != nil {
			return fmt.Errorf("writing %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) MarkReminded(ctx context.Context, projectID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE projects SET last_reminder_sent_at=? WHERE id=?`, formatTime(at), projectID)
	if err != nil {
		return fmt.Errorf("marking reminder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }
