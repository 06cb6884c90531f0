package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Sample represents a recorded landmark sample stored in the database.
type Sample struct {
	ID          int64           `json:"id"`
	Letter      string          `json:"letter"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SampleRepository provides CRUD operations for letter samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Create appends samples for a letter in a single transaction and updates
// the letter's sample count. The letter must exist.
func (r *SampleRepository) Create(letter string, samples []json.RawMessage) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM letter_samples WHERE letter = ?`, letter).Scan(&existing); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO letter_samples (letter, sample_index, data, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for i, data := range samples {
		if _, err := stmt.Exec(letter, existing+i, string(data), now); err != nil {
			return err
		}
	}

	result, err := tx.Exec(`UPDATE letters SET samples = ?, updated_at = ? WHERE letter = ?`,
		existing+len(samples), now, letter)
	if err != nil {
		return err
	}
	if err := checkAffected(result); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByLetter retrieves all samples for a letter in recording order.
func (r *SampleRepository) GetByLetter(letter string) ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT id, letter, sample_index, data, created_at
		 FROM letter_samples
		 WHERE letter = ?
		 ORDER BY sample_index`,
		letter,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var data string
		if err := rows.Scan(&s.ID, &s.Letter, &s.SampleIndex, &data, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Data = json.RawMessage(data)
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// DeleteByLetter removes all samples for a letter and resets its count.
func (r *SampleRepository) DeleteByLetter(letter string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM letter_samples WHERE letter = ?`, letter); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE letters SET samples = 0, updated_at = ? WHERE letter = ?`, time.Now(), letter); err != nil {
		return err
	}
	return tx.Commit()
}
