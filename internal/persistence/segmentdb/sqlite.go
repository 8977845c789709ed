// Package segmentdb is a sqlite-backed segment platform. It gives the
// engine the same activation contract a live server does: writes land
// immediately, but a requested active set only becomes readable on the
// next Step.
package segmentdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB

	active  map[int]bool
	pending []int
	cache   map[int]string

	// writeErr holds the first failed Write since the last Step; the
	// platform interface has no error return on Write, so Step reports
	// it instead of letting the loss go unnoticed.
	writeErr error
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db:     db,
		active: map[int]bool{},
		cache:  map[int]string{},
	}
	if err := s.loadState(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
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
		`CREATE TABLE IF NOT EXISTS segments (
			id INTEGER PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadState() error {
	var active, pending []int
	if err := s.readMeta("active", &active); err != nil {
		return err
	}
	if err := s.readMeta("pending", &pending); err != nil {
		return err
	}
	s.pending = pending
	for _, id := range active {
		s.active[id] = true
		data, err := s.readSegment(id)
		if err != nil {
			return err
		}
		s.cache[id] = data
	}
	return nil
}

func (s *Store) readMeta(key string, v any) error {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), v)
}

func (s *Store) writeMeta(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw))
	return err
}

func (s *Store) readSegment(id int) (string, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM segments WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return data, err
}

// ActiveSegments implements memory.Platform.
func (s *Store) ActiveSegments() []int {
	out := make([]int, 0, len(s.active))
	for id := range s.active {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Read implements memory.Platform. Only active segments are readable.
func (s *Store) Read(id int) (string, bool) {
	if !s.active[id] {
		return "", false
	}
	data, ok := s.cache[id]
	return data, ok
}

// Write implements memory.Platform. Writes persist immediately and are
// visible to a reader as soon as the segment is active.
func (s *Store) Write(id int, data string) {
	_, err := s.db.Exec(
		`INSERT INTO segments (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		id, data, time.Now().UTC().Format(time.RFC3339))
	if err != nil && s.writeErr == nil {
		s.writeErr = fmt.Errorf("segment %d write: %w", id, err)
	}
	if s.active[id] {
		s.cache[id] = data
	}
}

// SetActiveSegments implements memory.Platform: the set takes effect at
// the next Step.
func (s *Store) SetActiveSegments(ids []int) {
	s.pending = append([]int(nil), ids...)
	_ = s.writeMeta("pending", s.pending)
}

// Step promotes the pending set to active, loading segment contents. Call
// once per tick boundary. A write that failed since the previous Step is
// reported here.
func (s *Store) Step() error {
	if err := s.writeErr; err != nil {
		s.writeErr = nil
		return err
	}
	s.active = map[int]bool{}
	s.cache = map[int]string{}
	for _, id := range s.pending {
		s.active[id] = true
		data, err := s.readSegment(id)
		if err != nil {
			return err
		}
		s.cache[id] = data
	}
	if err := s.writeMeta("active", s.ActiveSegments()); err != nil {
		return err
	}
	return nil
}

// ReadRaw reads a segment straight from storage, ignoring activation.
// For inspection tooling only; the engine goes through Read.
func (s *Store) ReadRaw(id int) (string, error) {
	return s.readSegment(id)
}

// SegmentInfo describes one stored segment for inspection tooling.
type SegmentInfo struct {
	ID        int
	Size      int
	Active    bool
	UpdatedAt string
}

// ListSegments returns every stored segment ordered by id.
func (s *Store) ListSegments() ([]SegmentInfo, error) {
	rows, err := s.db.Query(`SELECT id, length(data), updated_at FROM segments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SegmentInfo
	for rows.Next() {
		var info SegmentInfo
		if err := rows.Scan(&info.ID, &info.Size, &info.UpdatedAt); err != nil {
			return nil, err
		}
		info.Active = s.active[info.ID]
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
