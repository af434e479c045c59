package history

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Event records one spoken trigger: which gesture fired, what was said and
// how strong the match was.
type Event struct {
	ID        string    `json:"id"`
	GestureID string    `json:"gesture_id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository provides access to the recognition event log.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts a new event and returns its generated id.
func (r *EventRepository) Record(gestureID, name, message string, score float64) (string, error) {
	id := uuid.New().String()
	_, err := r.db.Exec(
		`INSERT INTO events (id, gesture_id, name, message, score) VALUES (?, ?, ?, ?, ?)`,
		id, gestureID, name, message, score,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Recent returns the newest events, most recent first.
func (r *EventRepository) Recent(limit int) ([]Event, error) {
	rows, err := r.db.Query(
		`SELECT id, gesture_id, name, message, score, created_at
		 FROM events
		 ORDER BY created_at DESC, id
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.GestureID, &e.Name, &e.Message, &e.Score, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountByGesture returns how many times the given gesture has fired.
func (r *EventRepository) CountByGesture(gestureID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM events WHERE gesture_id = ?`, gestureID).Scan(&n)
	return n, err
}
