// SPDX-License-Identifier: MPL-2.0

package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/addonctl/addonctl/pkg/addon"
	"github.com/addonctl/addonctl/pkg/manifest"
	"github.com/addonctl/addonctl/pkg/packver"

	_ "modernc.org/sqlite"
)

const (
	// DirName is the hidden per-world directory holding addonctl state.
	DirName = ".addonctl"
	// FileName is the journal database file inside DirName.
	FileName = "journal.db"
)

// ErrClosed is returned by operations on a closed Journal.
var ErrClosed = errors.New("journal is closed")

// Journal is an append-only event log backed by SQLite.
type Journal struct {
	db *sql.DB
}

// Path returns the journal location for a world directory.
func Path(world string) string {
	return filepath.Join(world, DirName, FileName)
}

// Open opens or creates the journal database at path.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure journal %s: %w", path, err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize journal %s: %w", path, err)
	}

	return &Journal{db: db}, nil
}

// OpenWorld opens the journal of a world directory.
func OpenWorld(world string) (*Journal, error) {
	return Open(Path(world))
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at_unix_ms INTEGER NOT NULL,
			action TEXT NOT NULL,
			kind TEXT NOT NULL,
			pack_id TEXT NOT NULL,
			name TEXT NOT NULL,
			version TEXT NOT NULL,
			previous TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS events_pack_id ON events(pack_id);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record appends ev. It implements addon.Recorder.
func (j *Journal) Record(ctx context.Context, ev addon.Event) error {
	if j == nil || j.db == nil {
		return ErrClosed
	}

	var previous sql.NullString
	if ev.Previous != nil {
		previous = sql.NullString{String: ev.Previous.String(), Valid: true}
	}
	at := ev.Time
	if at.IsZero() {
		at = time.Now()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events (at_unix_ms, action, kind, pack_id, name, version, previous)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		at.UnixMilli(), ev.Action.String(), ev.Kind.String(), ev.PackID, ev.Name, ev.Version.String(), previous,
	)
	if err != nil {
		return fmt.Errorf("record %s event for %s: %w", ev.Action, ev.Name, err)
	}
	return nil
}

// Recent returns up to limit events, newest first. A non-positive limit
// returns every event.
func (j *Journal) Recent(ctx context.Context, limit int) ([]addon.Event, error) {
	if j == nil || j.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT at_unix_ms, action, kind, pack_id, name, version, previous
		 FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []addon.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (addon.Event, error) {
	var (
		atMS                           int64
		action, kind, id, name, verStr string
		previous                       sql.NullString
	)
	if err := rows.Scan(&atMS, &action, &kind, &id, &name, &verStr, &previous); err != nil {
		return addon.Event{}, fmt.Errorf("scan journal row: %w", err)
	}

	ev := addon.Event{
		Time:   time.UnixMilli(atMS),
		PackID: id,
		Name:   name,
	}

	var ok bool
	if ev.Action, ok = addon.ParseAction(action); !ok {
		return addon.Event{}, fmt.Errorf("journal row for %s: unknown action %q", name, action)
	}
	if ev.Kind, ok = parseKind(kind); !ok {
		return addon.Event{}, fmt.Errorf("journal row for %s: unknown kind %q", name, kind)
	}

	v, err := packver.Parse(verStr)
	if err != nil {
		return addon.Event{}, fmt.Errorf("journal row for %s: %w", name, err)
	}
	ev.Version = v

	if previous.Valid {
		p, err := packver.Parse(previous.String)
		if err != nil {
			return addon.Event{}, fmt.Errorf("journal row for %s: %w", name, err)
		}
		ev.Previous = &p
	}
	return ev, nil
}

func parseKind(s string) (manifest.PackKind, bool) {
	for _, k := range manifest.Kinds() {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Close releases the database. Further calls return ErrClosed.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

var _ addon.Recorder = (*Journal)(nil)
