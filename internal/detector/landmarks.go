// Package detector provides hand landmark detection interfaces and types
// for the mudra sign-to-speech pipeline.
package detector

import (
	"errors"
	"fmt"
	"math"
)

// Hand landmark indices following the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21

	// FlatLen is the length of a flattened landmark array (21 points x 3 coords).
	FlatLen = NumLandmarks * 3
)

// ErrMalformedLandmarks is returned when a landmark array does not describe
// exactly 21 three-dimensional points.
var ErrMalformedLandmarks = errors.New("malformed landmarks")

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks of one detected hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Distance3D calculates the Euclidean distance between two 3D points.
func Distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// FromFlat builds a HandLandmarks from a flat [x0,y0,z0, x1,y1,z1, ...] array.
// The stored pose library and enrollment samples use this layout.
// Returns ErrMalformedLandmarks unless exactly 63 values are given.
func FromFlat(flat []float64) (*HandLandmarks, error) {
	if len(flat) != FlatLen {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrMalformedLandmarks, len(flat), FlatLen)
	}

	h := &HandLandmarks{}
	for i := 0; i < NumLandmarks; i++ {
		h.Points[i] = Point3D{
			X: flat[i*3],
			Y: flat[i*3+1],
			Z: flat[i*3+2],
		}
	}
	return h, nil
}

// Flat returns the landmarks as a flat 63-value array, the inverse of FromFlat.
func (h *HandLandmarks) Flat() []float64 {
	flat := make([]float64, 0, FlatLen)
	for i := 0; i < NumLandmarks; i++ {
		flat = append(flat, h.Points[i].X, h.Points[i].Y, h.Points[i].Z)
	}
	return flat
}

// Normalize re-centers the landmarks on the wrist and scales them so the
// distance from the wrist to the middle finger MCP becomes 1.0, making the
// result invariant to hand position and size. If that reference distance is
// zero (degenerate hand) the points are centered but left unscaled.
// The receiver is not modified.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	normalized := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	// Scale anchor: distance from origin to the (now centered) middle finger MCP.
	scale := Distance3D(Point3D{}, normalized.Points[MiddleMCP])
	if scale < 1e-10 {
		return normalized
	}

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}
