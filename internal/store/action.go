package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/tofgesture/internal/gesture"
)

// ErrInvalidGesture is returned when an action is bound to None or to a value
// that is not a gesture.
var ErrInvalidGesture = errors.New("invalid gesture binding")

// Action binds a gesture to a plugin action. Config is passed to the plugin
// unchanged with every request.
type Action struct {
	ID         string
	Gesture    gesture.Gesture
	PluginName string
	ActionName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// ActionRepository stores gesture-to-action bindings.
type ActionRepository struct {
	db *sql.DB
}

// Actions returns the action repository for this store.
func (s *Store) Actions() *ActionRepository {
	return &ActionRepository{db: s.db}
}

const actionColumns = `id, gesture, plugin_name, action_name, config, enabled, created_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(row rowScanner) (*Action, error) {
	var (
		a       Action
		name    string
		config  string
		enabled int
	)
	if err := row.Scan(&a.ID, &name, &a.PluginName, &a.ActionName, &config, &enabled, &a.CreatedAt); err != nil {
		return nil, err
	}

	g, err := gesture.ParseGesture(name)
	if err != nil {
		return nil, fmt.Errorf("action %s: %w", a.ID, err)
	}
	a.Gesture = g
	a.Config = json.RawMessage(config)
	a.Enabled = enabled != 0
	return &a, nil
}

// gestureColumn returns the stored name of g. Only recognizable gestures can
// be bound.
func gestureColumn(g gesture.Gesture) (string, error) {
	if g == gesture.None {
		return "", fmt.Errorf("%w: none", ErrInvalidGesture)
	}
	text, err := g.MarshalText()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidGesture, err)
	}
	return string(text), nil
}

func configColumn(c json.RawMessage) string {
	if len(c) == 0 {
		return "{}"
	}
	return string(c)
}

// Create inserts a. It sets a.CreatedAt.
func (r *ActionRepository) Create(a *Action) error {
	name, err := gestureColumn(a.Gesture)
	if err != nil {
		return err
	}
	a.CreatedAt = time.Now().UTC()

	_, err = r.db.Exec(
		`INSERT INTO actions (`+actionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, name, a.PluginName, a.ActionName, configColumn(a.Config), a.Enabled, a.CreatedAt,
	)
	return err
}

// GetByID retrieves an action by its ID.
func (r *ActionRepository) GetByID(id string) (*Action, error) {
	a, err := scanAction(r.db.QueryRow(`SELECT `+actionColumns+` FROM actions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// GetByGesture returns the newest enabled action bound to g, or nil, nil
// when there is none.
func (r *ActionRepository) GetByGesture(g gesture.Gesture) (*Action, error) {
	name, err := gestureColumn(g)
	if err != nil {
		return nil, err
	}

	a, err := scanAction(r.db.QueryRow(
		`SELECT `+actionColumns+` FROM actions
		 WHERE gesture = ? AND enabled = 1
		 ORDER BY created_at DESC LIMIT 1`,
		name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// List returns every action, newest first.
func (r *ActionRepository) List() ([]*Action, error) {
	rows, err := r.db.Query(`SELECT ` + actionColumns + ` FROM actions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []*Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Update rewrites the binding and settings of the action with a.ID.
func (r *ActionRepository) Update(a *Action) error {
	name, err := gestureColumn(a.Gesture)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(
		`UPDATE actions SET gesture = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		name, a.PluginName, a.ActionName, configColumn(a.Config), a.Enabled, a.ID,
	)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// Delete removes the action with the given ID. Events that referenced it keep
// their gesture but lose the link.
func (r *ActionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM actions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// expectOne returns ErrNotFound when result touched no row.
func expectOne(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
