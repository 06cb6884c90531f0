package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Letters table - one row per trained letter template
		`CREATE TABLE IF NOT EXISTS letters (
			letter TEXT PRIMARY KEY CHECK(length(letter) = 1 AND letter BETWEEN 'A' AND 'Z'),
			tolerance REAL NOT NULL DEFAULT 0.5,
			samples INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Letter features table - the averaged feature vector of a template
		`CREATE TABLE IF NOT EXISTS letter_features (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			letter TEXT NOT NULL REFERENCES letters(letter) ON DELETE CASCADE,
			idx INTEGER NOT NULL,
			value REAL NOT NULL
		)`,

		// Letter samples table - raw recorded landmark samples for training
		`CREATE TABLE IF NOT EXISTS letter_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			letter TEXT NOT NULL REFERENCES letters(letter) ON DELETE CASCADE,
			sample_index INTEGER NOT NULL,
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sessions table - one row per prediction session
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			sentence TEXT NOT NULL DEFAULT '',
			narration TEXT NOT NULL DEFAULT ''
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_letter_features_letter ON letter_features(letter)`,
		`CREATE INDEX IF NOT EXISTS idx_letter_samples_letter ON letter_samples(letter)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
