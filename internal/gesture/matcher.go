// Package gesture provides pose matching, coarse shape classification and
// temporal stabilization for recognized gestures.
package gesture

import (
	"log/slog"
	"sort"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/library"
)

// outlierKeepRatio is the fraction of per-joint distances kept when averaging.
// Dropping the largest ~20% makes the score robust to a few occluded or
// jittery joints. With 21 joints this keeps the lowest 16.
const outlierKeepRatio = 0.8

// Match is a successful library lookup: the best-scoring enrolled pose.
type Match struct {
	ID      string
	Name    string
	Message string
	Score   float64 // similarity in (0, 1], higher is closer
}

// Kind distinguishes the two classification strategies: the library-free
// shape heuristic and the enrolled-pose matcher. They answer different
// questions (shape category vs specific pose) and are never merged.
type Kind string

const (
	KindHeuristic    Kind = "heuristic"
	KindLibraryMatch Kind = "library_match"
)

// Classification is a tagged result from one pipeline pass over a hand.
type Classification struct {
	Kind  Kind
	Tag   string // shape tag, set when Kind == KindHeuristic
	Match *Match // set when Kind == KindLibraryMatch
}

// Matcher finds the enrolled pose closest to an observed hand.
type Matcher struct {
	lib       *library.Library
	threshold float64
	log       *slog.Logger
}

// NewMatcher creates a Matcher over the given library. A hand matches only
// when its best similarity score reaches threshold.
func NewMatcher(lib *library.Library, threshold float64, log *slog.Logger) *Matcher {
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{
		lib:       lib,
		threshold: threshold,
		log:       log,
	}
}

// FindBestMatch compares the flat landmark array against every stored pose
// and returns the single best match, or false when nothing reaches the
// threshold.
//
// Both sides are normalized before comparison. Per pose, the 21 per-joint
// distances are sorted and the lowest 80% averaged; similarity is
// 1/(1+avg_distance). Ties keep the first pose seen, so library iteration
// order is part of the contract. A malformed stored pose is skipped, never
// fatal to the search.
func (m *Matcher) FindBestMatch(landmarks []float64) (*Match, bool) {
	if len(landmarks) == 0 || m.lib.Len() == 0 {
		return nil, false
	}

	query, err := detector.FromFlat(landmarks)
	if err != nil {
		m.log.Warn("rejecting malformed query landmarks", "error", err)
		return nil, false
	}
	queryNorm := query.Normalize()

	var best *Match
	bestScore := -1.0

	for _, pose := range m.lib.All() {
		if len(pose.Landmarks) == 0 {
			continue
		}

		stored, err := detector.FromFlat(pose.Landmarks)
		if err != nil {
			m.log.Warn("skipping pose with malformed landmarks", "id", pose.ID, "error", err)
			continue
		}
		storedNorm := stored.Normalize()

		score := similarity(queryNorm, storedNorm)
		if score > bestScore {
			bestScore = score
			best = &Match{
				ID:      pose.ID,
				Name:    pose.Name,
				Message: pose.Message,
				Score:   score,
			}
		}
	}

	if best == nil || bestScore < m.threshold {
		return nil, false
	}
	return best, true
}

// similarity scores two normalized hands via the trimmed mean of their
// per-joint distances.
func similarity(a, b *detector.HandLandmarks) float64 {
	distances := make([]float64, detector.NumLandmarks)
	for i := 0; i < detector.NumLandmarks; i++ {
		distances[i] = detector.Distance3D(a.Points[i], b.Points[i])
	}
	sort.Float64s(distances)

	k := int(float64(len(distances)) * outlierKeepRatio)
	if k < 1 {
		k = 1
	}

	var sum float64
	for _, d := range distances[:k] {
		sum += d
	}
	avgDistance := sum / float64(k)

	return 1.0 / (1.0 + avgDistance)
}
