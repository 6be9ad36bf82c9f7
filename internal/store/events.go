package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event records a change of the recognized gesture.
type Event struct {
	ID          string    `json:"id"`
	Gesture     string    `json:"gesture"`
	Previous    string    `json:"previous"`
	Hands       int       `json:"hands"`
	TimestampMs int64     `json:"timestamp_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventRepository provides access to gesture events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts an event. An empty ID is filled with a new UUID and
// CreatedAt is set to the current time.
func (r *EventRepository) Create(e *Event) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO gesture_events (id, gesture, previous, hands, timestamp_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Gesture, e.Previous, e.Hands, e.TimestampMs, e.CreatedAt,
	)
	return err
}

// GetByID retrieves an event by its ID.
func (r *EventRepository) GetByID(id string) (*Event, error) {
	e := &Event{}
	err := r.db.QueryRow(
		`SELECT id, gesture, previous, hands, timestamp_ms, created_at
		 FROM gesture_events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Gesture, &e.Previous, &e.Hands, &e.TimestampMs, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Recent returns up to limit events, newest first.
func (r *EventRepository) Recent(limit int) ([]*Event, error) {
	if limit <= 0 {
		return []*Event{}, nil
	}

	rows, err := r.db.Query(
		`SELECT id, gesture, previous, hands, timestamp_ms, created_at
		 FROM gesture_events ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.Gesture, &e.Previous, &e.Hands, &e.TimestampMs, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// CountByGesture returns how many events were recorded per gesture.
func (r *EventRepository) CountByGesture() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT gesture, COUNT(*) FROM gesture_events GROUP BY gesture`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var g string
		var n int
		if err := rows.Scan(&g, &n); err != nil {
			return nil, err
		}
		counts[g] = n
	}

	return counts, rows.Err()
}
