package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// RunRecord is one completed recommendation run.
type RunRecord struct {
	ID        int       `json:"id"`
	Query     string    `json:"query"`
	Genre     string    `json:"genre"`
	Steps     int       `json:"steps"`
	TopTitle  string    `json:"top_title"`
	Titles    []string  `json:"titles"`
	CreatedAt time.Time `json:"created_at"`
}

// RunStore persists completed runs to sqlite.
type RunStore struct {
	DB *sql.DB
}

func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	query := `CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT,
		genre TEXT,
		steps INTEGER,
		top_title TEXT,
		titles TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(query); err != nil {
		return nil, err
	}

	return &RunStore{DB: db}, nil
}

func (s *RunStore) Close() error {
	return s.DB.Close()
}

// RecordRun inserts one completed run. Titles are stored as a JSON array.
func (s *RunStore) RecordRun(query, genre string, steps int, topTitle string, titles []string) error {
	data, err := json.Marshal(titles)
	if err != nil {
		return err
	}
	insert := `INSERT INTO runs (query, genre, steps, top_title, titles) VALUES (?, ?, ?, ?, ?)`
	_, err = s.DB.Exec(insert, query, genre, steps, topTitle, string(data))
	return err
}

// RecentRuns returns the most recent runs, newest first.
func (s *RunStore) RecentRuns(limit int) ([]RunRecord, error) {
	query := `SELECT id, query, genre, steps, top_title, titles, created_at
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := s.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var titles string
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.Genre, &rec.Steps, &rec.TopTitle, &titles, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(titles), &rec.Titles); err != nil {
			rec.Titles = nil
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}
