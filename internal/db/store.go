package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"writing_coach/internal/issue"
	"writing_coach/internal/rubric"
)

var ErrNotFound = errors.New("session not stored")

// Record is the latest committed analysis of one session.
type Record struct {
	SessionID string
	Version   int64
	Text      string
	Issues    []issue.Issue
	Score     rubric.Score
	UpdatedAt time.Time
}

type Store struct {
	conn *sql.DB
	now  func() time.Time
}

func NewStore(path string) (*Store, error) {
	conn, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &Store{conn: conn, now: time.Now}, nil
}

func (s *Store) Close() error { return s.conn.Close() }

// Save replaces everything stored for rec.SessionID. An older version never
// overwrites a newer one.
func (s *Store) Save(rec Record) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var stored int64
	switch err := tx.QueryRow(`SELECT version FROM sessions WHERE id = ?`, rec.SessionID).Scan(&stored); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("read stored version: %w", err)
	case stored > rec.Version:
		return nil
	}

	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = s.now()
	}
	if _, err := tx.Exec(
		`INSERT INTO sessions(id, version, text, updated_at) VALUES(?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET version = excluded.version, text = excluded.text, updated_at = excluded.updated_at`,
		rec.SessionID, rec.Version, rec.Text, updated.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM issues WHERE session_id = ?`, rec.SessionID); err != nil {
		return fmt.Errorf("clear issues: %w", err)
	}
	for _, is := range rec.Issues {
		suggestions, err := json.Marshal(is.Suggestions)
		if err != nil {
			return fmt.Errorf("marshal suggestions: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO issues(session_id, issue_id, source, rule, kind, severity, start_offset, end_offset, message, suggestions)
			 VALUES(?,?,?,?,?,?,?,?,?,?)`,
			rec.SessionID,
			is.ID,
			string(is.Source),
			is.Rule,
			string(is.Kind),
			is.Severity.String(),
			is.Start,
			is.End,
			is.Message,
			string(suggestions),
		); err != nil {
			return fmt.Errorf("insert issue: %w", err)
		}
	}

	detail, err := json.Marshal(rec.Score)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO scores(session_id, version, ideas, structure, language, mechanics, overall, detail)
		 VALUES(?,?,?,?,?,?,?,?)
		 ON CONFLICT(session_id) DO UPDATE SET version = excluded.version, ideas = excluded.ideas,
		 structure = excluded.structure, language = excluded.language, mechanics = excluded.mechanics,
		 overall = excluded.overall, detail = excluded.detail`,
		rec.SessionID,
		rec.Version,
		rec.Score.Ideas.Score,
		rec.Score.Structure.Score,
		rec.Score.Language.Score,
		rec.Score.Mechanics.Score,
		rec.Score.Overall,
		string(detail),
	); err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) Load(sessionID string) (Record, error) {
	rec := Record{SessionID: sessionID}
	var updated string
	err := s.conn.QueryRow(`SELECT version, text, updated_at FROM sessions WHERE id = ?`, sessionID).
		Scan(&rec.Version, &rec.Text, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load session: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return Record{}, fmt.Errorf("parse updated_at: %w", err)
	}

	rows, err := s.conn.Query(
		`SELECT issue_id, source, rule, kind, severity, start_offset, end_offset, message, suggestions
		 FROM issues WHERE session_id = ? ORDER BY start_offset, end_offset, issue_id`, sessionID)
	if err != nil {
		return Record{}, fmt.Errorf("load issues: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			is                             issue.Issue
			source, kind, sev, suggestions string
		)
		if err := rows.Scan(&is.ID, &source, &is.Rule, &kind, &sev, &is.Start, &is.End, &is.Message, &suggestions); err != nil {
			return Record{}, fmt.Errorf("scan issue: %w", err)
		}
		is.Source, is.Kind, is.Version = issue.Source(source), issue.Kind(kind), rec.Version
		if is.Severity, err = issue.ParseSeverity(sev); err != nil {
			return Record{}, err
		}
		if err := json.Unmarshal([]byte(suggestions), &is.Suggestions); err != nil {
			return Record{}, fmt.Errorf("decode suggestions: %w", err)
		}
		rec.Issues = append(rec.Issues, is)
	}
	if err := rows.Err(); err != nil {
		return Record{}, fmt.Errorf("iterate issues: %w", err)
	}
	issue.Sort(rec.Issues)

	var detail string
	switch err := s.conn.QueryRow(`SELECT detail FROM scores WHERE session_id = ?`, sessionID).Scan(&detail); {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return Record{}, fmt.Errorf("load score: %w", err)
	default:
		if err := json.Unmarshal([]byte(detail), &rec.Score); err != nil {
			return Record{}, fmt.Errorf("decode score: %w", err)
		}
	}
	return rec, nil
}

// Delete removes a session and everything stored for it.
func (s *Store) Delete(sessionID string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()
	for _, table := range []string{"issues", "scores"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) CountRows(table string) (int, error) {
	row := s.conn.QueryRow(`SELECT COUNT(*) FROM ` + table)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}
