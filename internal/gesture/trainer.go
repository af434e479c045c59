package gesture

import (
	"fmt"
	"strings"
	"time"
)

// Trainer turns captured enrollment samples into a single reference pose.
type Trainer struct{}

// NewTrainer creates a new Trainer instance.
func NewTrainer() *Trainer {
	return &Trainer{}
}

// Average combines multiple flat landmark samples coordinate-wise into one
// array. All samples must be non-empty and the same length.
func (t *Trainer) Average(samples [][]float64) ([]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples provided")
	}

	length := len(samples[0])
	if length == 0 {
		return nil, fmt.Errorf("sample 0 has no landmarks")
	}
	for i, s := range samples {
		if len(s) != length {
			return nil, fmt.Errorf("sample %d has %d values, expected %d", i, len(s), length)
		}
	}

	averaged := make([]float64, length)
	for _, s := range samples {
		for i, v := range s {
			averaged[i] += v
		}
	}
	n := float64(len(samples))
	for i := range averaged {
		averaged[i] /= n
	}

	return averaged, nil
}

// PoseID derives a unique pose identifier from the gesture name and the
// enrollment time, e.g. "gesture_point_up_1712345678".
func PoseID(name string, now time.Time) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "_")
	return fmt.Sprintf("gesture_%s_%d", slug, now.Unix())
}
