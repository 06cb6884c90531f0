package store

import (
	"database/sql"
	"errors"
	"time"
)

// Letter is a trained letter template's metadata.
type Letter struct {
	Letter    string    `json:"letter"`
	Tolerance float64   `json:"tolerance"`
	Samples   int       `json:"samples"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LetterRepository provides CRUD operations for letter templates.
type LetterRepository struct {
	db *sql.DB
}

// Letters returns the letter repository for this store.
func (s *Store) Letters() *LetterRepository {
	return &LetterRepository{db: s.db}
}

// Create inserts a new letter.
func (r *LetterRepository) Create(l *Letter) error {
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO letters (letter, tolerance, samples, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		l.Letter, l.Tolerance, l.Samples, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

// Get retrieves a letter.
func (r *LetterRepository) Get(letter string) (*Letter, error) {
	l := &Letter{}
	err := r.db.QueryRow(
		`SELECT letter, tolerance, samples, created_at, updated_at
		 FROM letters WHERE letter = ?`,
		letter,
	).Scan(&l.Letter, &l.Tolerance, &l.Samples, &l.CreatedAt, &l.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// List retrieves all letters in alphabetical order.
func (r *LetterRepository) List() ([]*Letter, error) {
	rows, err := r.db.Query(
		`SELECT letter, tolerance, samples, created_at, updated_at
		 FROM letters ORDER BY letter`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var letters []*Letter
	for rows.Next() {
		l := &Letter{}
		if err := rows.Scan(&l.Letter, &l.Tolerance, &l.Samples, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		letters = append(letters, l)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return letters, nil
}

// Update changes a letter's tolerance and sample count.
func (r *LetterRepository) Update(l *Letter) error {
	l.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE letters SET tolerance = ?, samples = ?, updated_at = ? WHERE letter = ?`,
		l.Tolerance, l.Samples, l.UpdatedAt, l.Letter,
	)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// Delete removes a letter with its features and samples.
func (r *LetterRepository) Delete(letter string) error {
	result, err := r.db.Exec(`DELETE FROM letters WHERE letter = ?`, letter)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// SetFeatures replaces the template feature vector of a letter.
func (r *LetterRepository) SetFeatures(letter string, features []float64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(`UPDATE letters SET updated_at = ? WHERE letter = ?`, time.Now(), letter)
	if err != nil {
		return err
	}
	if err := checkAffected(result); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM letter_features WHERE letter = ?`, letter); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO letter_features (letter, idx, value) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, v := range features {
		if _, err := stmt.Exec(letter, i, v); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetFeatures returns a letter's template feature vector, or nil when untrained.
func (r *LetterRepository) GetFeatures(letter string) ([]float64, error) {
	rows, err := r.db.Query(
		`SELECT value FROM letter_features WHERE letter = ? ORDER BY idx`,
		letter,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		features = append(features, v)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return features, nil
}
