package gesture

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestTrainer_Average(t *testing.T) {
	trainer := NewTrainer()

	t.Run("averages coordinate-wise", func(t *testing.T) {
		samples := [][]float64{
			{1.0, 2.0, 3.0},
			{3.0, 4.0, 5.0},
			{5.0, 6.0, 7.0},
		}

		avg, err := trainer.Average(samples)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []float64{3.0, 4.0, 5.0}
		for i := range want {
			if math.Abs(avg[i]-want[i]) > 1e-12 {
				t.Errorf("index %d: expected %f, got %f", i, want[i], avg[i])
			}
		}
	})

	t.Run("single sample passes through", func(t *testing.T) {
		avg, err := trainer.Average([][]float64{{0.5, 0.25}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if avg[0] != 0.5 || avg[1] != 0.25 {
			t.Errorf("expected pass-through, got %v", avg)
		}
	})

	t.Run("rejects zero samples", func(t *testing.T) {
		if _, err := trainer.Average(nil); err == nil {
			t.Error("expected error for zero samples")
		}
	})

	t.Run("rejects mismatched lengths", func(t *testing.T) {
		_, err := trainer.Average([][]float64{{1, 2, 3}, {1, 2}})
		if err == nil {
			t.Error("expected error for mismatched sample lengths")
		}
	})

	t.Run("rejects empty first sample", func(t *testing.T) {
		if _, err := trainer.Average([][]float64{{}}); err == nil {
			t.Error("expected error for empty sample")
		}
	})
}

func TestPoseID(t *testing.T) {
	now := time.Unix(1712345678, 0)

	id := PoseID("Point Up", now)
	if id != "gesture_point_up_1712345678" {
		t.Errorf("unexpected id %q", id)
	}

	// Same name at different times yields distinct ids.
	later := PoseID("Point Up", now.Add(time.Second))
	if id == later {
		t.Error("expected time-derived ids to differ")
	}

	if strings.Contains(PoseID("  Wave  ", now), " ") {
		t.Error("expected whitespace to be normalized out of the id")
	}
}
