package history

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Sample is one raw landmark vector captured during enrollment.
type Sample struct {
	ID          int64     `json:"id"`
	GestureID   string    `json:"gesture_id"`
	SampleIndex int       `json:"sample_index"`
	Landmarks   []float64 `json:"landmarks"`
	CreatedAt   time.Time `json:"created_at"`
}

// SampleRepository provides access to raw enrollment samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Create inserts the samples recorded for a gesture in a single transaction.
func (r *SampleRepository) Create(gestureID string, samples [][]float64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO enrollment_samples (gesture_id, sample_index, landmarks) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, landmarks := range samples {
		data, err := json.Marshal(landmarks)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(gestureID, i, string(data)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByGestureID retrieves all samples for a given gesture in capture order.
func (r *SampleRepository) GetByGestureID(gestureID string) ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT id, gesture_id, sample_index, landmarks, created_at
		 FROM enrollment_samples
		 WHERE gesture_id = ?
		 ORDER BY sample_index`,
		gestureID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var data string
		if err := rows.Scan(&s.ID, &s.GestureID, &s.SampleIndex, &data, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &s.Landmarks); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// DeleteByGestureID removes all samples for a given gesture.
func (r *SampleRepository) DeleteByGestureID(gestureID string) error {
	_, err := r.db.Exec(`DELETE FROM enrollment_samples WHERE gesture_id = ?`, gestureID)
	return err
}
