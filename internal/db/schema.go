package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const SchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    text TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS issues (
    session_id TEXT NOT NULL,
    issue_id TEXT NOT NULL,
    source TEXT,
    rule TEXT,
    kind TEXT,
    severity TEXT,
    start_offset INTEGER,
    end_offset INTEGER,
    message TEXT,
    suggestions TEXT,
    PRIMARY KEY (session_id, issue_id)
);

CREATE TABLE IF NOT EXISTS scores (
    session_id TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    ideas INTEGER,
    structure INTEGER,
    language INTEGER,
    mechanics INTEGER,
    overall INTEGER,
    detail TEXT
);
`

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection serialises writers and keeps :memory: databases shared
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(SchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
