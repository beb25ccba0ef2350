package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Actions table - plugin actions to run when a gesture is recognized
		`CREATE TABLE IF NOT EXISTS actions (
			id TEXT PRIMARY KEY,
			gesture TEXT NOT NULL CHECK(gesture IN ('static_hold', 'swipe_right', 'swipe_left', 'swipe_up', 'swipe_down')),
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Gesture events table - every recognized gesture
		`CREATE TABLE IF NOT EXISTS gesture_events (
			id TEXT PRIMARY KEY,
			gesture TEXT NOT NULL,
			hand_found INTEGER NOT NULL DEFAULT 0,
			r REAL NOT NULL DEFAULT 0,
			theta REAL NOT NULL DEFAULT 0,
			phi REAL NOT NULL DEFAULT 0,
			frame_time_ms INTEGER NOT NULL,
			action_id TEXT REFERENCES actions(id) ON DELETE SET NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_actions_gesture ON actions(gesture)`,
		`CREATE INDEX IF NOT EXISTS idx_gesture_events_gesture ON gesture_events(gesture)`,
		`CREATE INDEX IF NOT EXISTS idx_gesture_events_created_at ON gesture_events(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
