// Copyright © 2025 The Gomon Project.

package record

import (
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3"
	"github.com/zosmac/gocore"
	"github.com/zosmac/procmon/metric"
)

type (
	// sqliteRecorder appends samples as rows of a samples table. Each insert
	// is its own transaction, so a killed monitor loses at most the in
	// flight sample.
	sqliteRecorder struct {
		db     *sql.DB
		insert string
	}
)

// openSqlite creates or opens the database at path.
func openSqlite(path string) (Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, gocore.Error("open", err, map[string]string{
			"path": path,
		})
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, gocore.Error("journal_mode", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=FULL"); err != nil {
		db.Close()
		return nil, gocore.Error("synchronous", err)
	}
	return &sqliteRecorder{db: db}, nil
}

// WriteHeader creates the samples table with the strategy's column names.
func (r *sqliteRecorder) WriteHeader(s metric.Schema) error {
	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		timestamp REAL NOT NULL,
		cpu       REAL NOT NULL,
		` + s.MemoryPrimary + ` INTEGER NOT NULL,
		` + s.MemorySecondary + ` INTEGER NOT NULL,
		` + s.Handles + ` INTEGER NOT NULL
	);`
	if _, err := r.db.Exec(schema); err != nil {
		return gocore.Error("create table", err)
	}
	if _, err := r.db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_timestamp ON samples(timestamp);",
	); err != nil {
		return gocore.Error("create index", err)
	}

	r.insert = "INSERT INTO samples (timestamp, cpu, " +
		s.MemoryPrimary + ", " + s.MemorySecondary + ", " + s.Handles +
		") VALUES (?, ?, ?, ?, ?)"

	return nil
}

// WriteSample appends one sample row.
func (r *sqliteRecorder) WriteSample(m metric.Sample) error {
	if r.insert == "" {
		return gocore.Error("insert", errors.New("header not written"))
	}
	if _, err := r.db.Exec(
		r.insert,
		float64(m.Time.UnixNano())/1e9,
		m.CPUPercent,
		m.MemoryPrimary,
		m.MemorySecondary,
		m.Handles,
	); err != nil {
		return gocore.Error("insert", err)
	}
	return nil
}

// Close closes the database.
func (r *sqliteRecorder) Close() error {
	return r.db.Close()
}
