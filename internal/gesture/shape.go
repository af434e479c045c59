package gesture

import (
	"github.com/ayusman/mudra/internal/detector"
)

// TagUnknown is returned when a hand fits none of the configured shape ranges.
const TagUnknown = "unknown"

// ShapeRange describes one coarse hand shape as a band of normalized
// landmark spread: closed hands cluster low, open hands high.
type ShapeRange struct {
	Tag string
	Min float64
	Max float64
}

// DefaultShapeRanges returns the hand-tuned bands for the built-in shapes.
func DefaultShapeRanges() []ShapeRange {
	return []ShapeRange{
		{Tag: "palm", Min: 0.1, Max: 0.5},
		{Tag: "fist", Min: 0.02, Max: 0.2},
		{Tag: "point_up", Min: 0.05, Max: 0.4},
	}
}

// ClassifyShape buckets a hand into a coarse shape category without any
// library lookup, for immediate visual feedback. The metric is the mean
// pairwise distance between all 21 landmarks, normalized by the hand span
// (wrist to middle fingertip). Among the ranges containing the value, the one
// whose midpoint lies closest wins; TagUnknown if none contain it.
func ClassifyShape(landmarks []float64, ranges []ShapeRange) string {
	hand, err := detector.FromFlat(landmarks)
	if err != nil {
		return TagUnknown
	}

	span := detector.Distance3D(hand.Points[detector.Wrist], hand.Points[detector.MiddleTip])

	normalized := 0.0
	if span > 0 {
		normalized = meanPairwiseDistance(hand) / span
	}

	best := TagUnknown
	bestDiff := -1.0
	for _, r := range ranges {
		if normalized < r.Min || normalized > r.Max {
			continue
		}
		diff := normalized - (r.Min+r.Max)/2
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			bestDiff = diff
			best = r.Tag
		}
	}
	return best
}

// meanPairwiseDistance averages the distance over every unordered pair of
// landmarks.
func meanPairwiseDistance(hand *detector.HandLandmarks) float64 {
	var sum float64
	var count int
	for i := 0; i < detector.NumLandmarks; i++ {
		for j := i + 1; j < detector.NumLandmarks; j++ {
			sum += detector.Distance3D(hand.Points[i], hand.Points[j])
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
