package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session is one prediction session's transcript.
type Session struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Sentence  string     `json:"sentence"`
	Narration string     `json:"narration"`
}

// SessionRepository records session transcripts.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a session row at start time.
func (r *SessionRepository) Create(s *Session) error {
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at, sentence, narration) VALUES (?, ?, ?, ?)`,
		s.ID, s.StartedAt, s.Sentence, s.Narration,
	)
	return err
}

// Finish records the end time, final sentence and final narration.
func (r *SessionRepository) Finish(id string, endedAt time.Time, sentence, narration string) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, sentence = ?, narration = ? WHERE id = ?`,
		endedAt, sentence, narration, id,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Get retrieves a session by ID.
func (r *SessionRepository) Get(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, started_at, ended_at, sentence, narration FROM sessions WHERE id = ?`,
		id,
	)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List returns the most recent sessions first. A limit <= 0 returns all.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, started_at, ended_at, sentence, narration
		 FROM sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	s := &Session{}
	var ended sql.NullTime
	if err := row.Scan(&s.ID, &s.StartedAt, &ended, &s.Sentence, &s.Narration); err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		s.EndedAt = &t
	}
	return s, nil
}
