package store

import (
	"database/sql"
	"time"
)

// Event is one recognized gesture.
type Event struct {
	ID          string
	Gesture     string
	HandFound   bool
	R           float64
	Theta       float64
	Phi         float64
	FrameTimeMs int64
	// ActionID is the action that ran for the event, or empty.
	ActionID  string
	CreatedAt time.Time
}

// EventRepository records and queries gesture events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts a new event. CreatedAt is set when zero.
func (r *EventRepository) Create(e *Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var actionID sql.NullString
	if e.ActionID != "" {
		actionID = sql.NullString{String: e.ActionID, Valid: true}
	}

	_, err := r.db.Exec(
		`INSERT INTO gesture_events (id, gesture, hand_found, r, theta, phi, frame_time_ms, action_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Gesture, e.HandFound, e.R, e.Theta, e.Phi, e.FrameTimeMs, actionID, e.CreatedAt,
	)
	return err
}

// List returns up to limit events, newest first. A limit <= 0 returns all.
func (r *EventRepository) List(limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, gesture, hand_found, r, theta, phi, frame_time_ms, action_id, created_at
		 FROM gesture_events ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var found int
		var actionID sql.NullString

		err := rows.Scan(&e.ID, &e.Gesture, &found, &e.R, &e.Theta, &e.Phi, &e.FrameTimeMs, &actionID, &e.CreatedAt)
		if err != nil {
			return nil, err
		}

		e.HandFound = found != 0
		e.ActionID = actionID.String
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountByGesture returns the number of events per gesture name.
func (r *EventRepository) CountByGesture() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT gesture, COUNT(*) FROM gesture_events GROUP BY gesture`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}

	return counts, rows.Err()
}

// DeleteBefore removes events created before t and returns how many were
// removed.
func (r *EventRepository) DeleteBefore(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM gesture_events WHERE created_at < ?`, t.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
