package gesture

import (
	"time"
)

// ShapeSmoother smooths the per-frame shape tag over a fixed-length sliding
// window so the displayed category does not flicker on noisy frames.
// It is owned and mutated exclusively by the pipeline goroutine.
type ShapeSmoother struct {
	size   int
	window []string
}

// NewShapeSmoother creates a smoother over the last size observations.
func NewShapeSmoother(size int) *ShapeSmoother {
	if size < 1 {
		size = 1
	}
	return &ShapeSmoother{
		size:   size,
		window: make([]string, 0, size),
	}
}

// Observe records a tag and returns the majority tag of the current window.
// The oldest entry is evicted on overflow. Ties resolve to the tag seen
// earliest in the window.
func (s *ShapeSmoother) Observe(tag string) string {
	if len(s.window) >= s.size {
		s.window = append(s.window[:0], s.window[1:]...)
	}
	s.window = append(s.window, tag)

	counts := make(map[string]int, len(s.window))
	for _, t := range s.window {
		counts[t]++
	}

	// Walk the window in order so a tie goes to the tag seen first.
	best := s.window[0]
	bestCount := 0
	seen := make(map[string]bool, len(counts))
	for _, t := range s.window {
		if seen[t] {
			continue
		}
		seen[t] = true
		if counts[t] > bestCount {
			bestCount = counts[t]
			best = t
		}
	}
	return best
}

// Reset clears the window.
func (s *ShapeSmoother) Reset() {
	s.window = s.window[:0]
}

// CooldownGate suppresses repeated side effects for a held gesture: a match
// fires only when the gesture id changes or the cooldown has elapsed since
// the last firing.
type CooldownGate struct {
	cooldown time.Duration
	lastID   string
	lastAt   time.Time
}

// NewCooldownGate creates a gate with the given suppression window.
func NewCooldownGate(cooldown time.Duration) *CooldownGate {
	return &CooldownGate{cooldown: cooldown}
}

// ShouldFire reports whether the side effect for the matched id may run now,
// and records the firing when it does.
func (g *CooldownGate) ShouldFire(id string, now time.Time) bool {
	if id == g.lastID && now.Sub(g.lastAt) <= g.cooldown {
		return false
	}
	g.lastID = id
	g.lastAt = now
	return true
}

// Last returns the most recently fired gesture id and its timestamp.
func (g *CooldownGate) Last() (string, time.Time) {
	return g.lastID, g.lastAt
}
