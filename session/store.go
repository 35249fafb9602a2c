// Package session persists interpreter bindings and evaluation history in
// a SQLite database so a server can resume where it left off.
package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	mankai "github.com/grastello/Mankai/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS bindings (
	name  TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	source TEXT NOT NULL,
	result TEXT NOT NULL,
	error  TEXT NOT NULL,
	ts     TEXT NOT NULL
);`

// Store is a SQLite-backed mankai.Recorder.
type Store struct {
	db   *sql.DB
	path string
}

var _ mankai.Recorder = (*Store)(nil)

// Entry is one row of evaluation history.
type Entry struct {
	ID        int64
	Source    string
	Result    string
	Error     string
	Timestamp string
}

// Open opens (or creates) the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	log.Printf("opened session database: %s", path)
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	log.Printf("closing session database: %s", s.path)
	return s.db.Close()
}

func encodeValue(v mankai.Value) (string, error) {
	goVal, err := mankai.ValueToGo(v)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(goVal)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	return string(data), nil
}

func decodeValue(data string) (mankai.Value, error) {
	var goVal any
	if err := json.Unmarshal([]byte(data), &goVal); err != nil {
		return mankai.Value{}, fmt.Errorf("unmarshal: %w", err)
	}
	return mankai.GoToValue(goVal)
}

// SaveBinding upserts a single binding.
func (s *Store) SaveBinding(name string, val mankai.Value) error {
	data, err := encodeValue(val)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	_, err = s.db.Exec(`INSERT INTO bindings (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`, name, data)
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// SaveBindings upserts every binding in one transaction.
func (s *Store) SaveBindings(bindings map[string]mankai.Value) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for name, val := range bindings {
		data, err := encodeValue(val)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("encode %s: %w", name, err)
		}
		_, err = tx.Exec(`INSERT INTO bindings (name, value) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value`, name, data)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("save %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadBindings returns every stored binding.
func (s *Store) LoadBindings() (map[string]mankai.Value, error) {
	rows, err := s.db.Query(`SELECT name, value FROM bindings`)
	if err != nil {
		return nil, fmt.Errorf("query bindings: %w", err)
	}
	defer rows.Close()

	bindings := make(map[string]mankai.Value)
	for rows.Next() {
		var name, data string
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("scan binding: %w", err)
		}
		val, err := decodeValue(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		bindings[name] = val
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return bindings, nil
}

func (s *Store) ClearBindings() error {
	if _, err := s.db.Exec(`DELETE FROM bindings`); err != nil {
		return fmt.Errorf("clear bindings: %w", err)
	}
	return nil
}

// RecordTrace appends one evaluation to the history.
func (s *Store) RecordTrace(t mankai.Trace) error {
	result := ""
	if t.Error == "" {
		result = t.Result.String()
	}
	_, err := s.db.Exec(`INSERT INTO history (source, result, error, ts) VALUES (?, ?, ?, ?)`,
		t.Source, result, t.Error, t.Timestamp)
	if err != nil {
		return fmt.Errorf("record trace: %w", err)
	}
	return nil
}

// History returns up to limit of the most recent entries, oldest first.
// A limit of zero or less returns everything.
func (s *Store) History(limit int) ([]Entry, error) {
	query := `SELECT id, source, result, error, ts FROM history ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Source, &e.Result, &e.Error, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
