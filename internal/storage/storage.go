// Package storage persists the application snapshot in a single SQLite row
// and reports when another process has replaced it.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store reads and writes the snapshot row. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	path   string
	writer string

	mu       sync.Mutex
	revision int64
}

// Info describes the stored snapshot row.
type Info struct {
	Revision  int64
	Writer    string
	UpdatedAt time.Time
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: dbPath, writer: uuid.NewString()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path is the database file.
func (s *Store) Path() string { return s.path }

// Writer identifies this process in the writer column.
func (s *Store) Writer() string { return s.writer }

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	data BLOB NOT NULL,
	revision INTEGER NOT NULL DEFAULT 1,
	writer TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL DEFAULT ''
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureSnapshotColumns()
}

func (s *Store) ensureSnapshotColumns() error {
	required := map[string]string{
		"writer":     "ALTER TABLE snapshots ADD COLUMN writer TEXT NOT NULL DEFAULT '';",
		"updated_at": "ALTER TABLE snapshots ADD COLUMN updated_at TEXT NOT NULL DEFAULT '';",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(snapshots);`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()
	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the stored snapshot. A database without one returns nil
// and no error.
func (s *Store) Load() ([]byte, error) {
	var data []byte
	var rev int64
	err := s.db.QueryRow(`SELECT data, revision FROM snapshots WHERE id = 1;`).Scan(&data, &rev)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s.mu.Lock()
	s.revision = rev
	s.mu.Unlock()
	return data, nil
}

// Save replaces the snapshot and bumps its revision.
func (s *Store) Save(data []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	var rev int64
	err := s.db.QueryRow(`
INSERT INTO snapshots (id, data, revision, writer, updated_at) VALUES (1, ?, 1, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	data = excluded.data,
	revision = snapshots.revision + 1,
	writer = excluded.writer,
	updated_at = excluded.updated_at
RETURNING revision;`, data, s.writer, now).Scan(&rev)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.mu.Lock()
	s.revision = rev
	s.mu.Unlock()
	return nil
}

// Stat describes the stored row without reading the data. ok is false when
// nothing has been saved yet.
func (s *Store) Stat() (Info, bool, error) {
	var info Info
	var updated string
	err := s.db.QueryRow(`SELECT revision, writer, updated_at FROM snapshots WHERE id = 1;`).
		Scan(&info.Revision, &info.Writer, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, false, nil
	}
	if err != nil {
		return Info{}, false, fmt.Errorf("stat snapshot: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		info.UpdatedAt = t
	}
	return info, true, nil
}

// ExternalChange reports whether another writer replaced the snapshot since
// this store last loaded or saved it.
func (s *Store) ExternalChange() (bool, error) {
	info, ok, err := s.Stat()
	if err != nil || !ok {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if info.Revision == s.revision {
		return false, nil
	}
	if info.Writer == s.writer {
		s.revision = info.Revision
		return false, nil
	}
	return true, nil
}

// Watch calls onChange whenever the database files are written, until ctx
// is done. onChange runs on the watcher goroutine.
func (s *Store) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(s.path)
	if err != nil {
		abs = s.path
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	base := filepath.Base(abs)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), base) {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				onChange()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("[storage] watcher error: %v", err)
		}
	}
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
