package gesture

import (
	"testing"
	"time"
)

func TestShapeSmoother_Majority(t *testing.T) {
	s := NewShapeSmoother(5)

	s.Observe("fist")
	s.Observe("palm")
	s.Observe("palm")
	s.Observe("fist")
	got := s.Observe("palm")

	if got != "palm" {
		t.Errorf("expected majority 'palm', got %q", got)
	}
}

func TestShapeSmoother_TieGoesToFirstSeen(t *testing.T) {
	s := NewShapeSmoother(5)

	s.Observe("fist")
	s.Observe("palm")
	s.Observe("palm")
	got := s.Observe("fist") // window [fist palm palm fist]: 2-2 tie

	if got != "fist" {
		t.Errorf("expected tie to resolve to first-seen 'fist', got %q", got)
	}
}

func TestShapeSmoother_EvictsOldest(t *testing.T) {
	s := NewShapeSmoother(3)

	s.Observe("fist")
	s.Observe("fist")
	s.Observe("palm")
	s.Observe("palm")
	got := s.Observe("palm") // window is now [palm palm palm]

	if got != "palm" {
		t.Errorf("expected 'palm' after eviction, got %q", got)
	}
}

func TestShapeSmoother_Reset(t *testing.T) {
	s := NewShapeSmoother(5)
	s.Observe("fist")
	s.Observe("fist")
	s.Reset()

	if got := s.Observe("palm"); got != "palm" {
		t.Errorf("expected 'palm' after reset, got %q", got)
	}
}

func TestCooldownGate_SuppressesRepeats(t *testing.T) {
	g := NewCooldownGate(5 * time.Second)
	now := time.Unix(1000, 0)

	fired := 0
	// Three matches of the same gesture inside the cooldown window.
	for i := 0; i < 3; i++ {
		if g.ShouldFire("a", now.Add(time.Duration(i)*time.Second)) {
			fired++
		}
	}

	if fired != 1 {
		t.Errorf("expected exactly 1 trigger for [A A A] within cooldown, got %d", fired)
	}
}

func TestCooldownGate_FiresOnGestureChange(t *testing.T) {
	g := NewCooldownGate(5 * time.Second)
	now := time.Unix(1000, 0)

	if !g.ShouldFire("a", now) {
		t.Fatal("first match must fire")
	}
	// A different gesture fires immediately, even inside the cooldown.
	if !g.ShouldFire("b", now.Add(time.Second)) {
		t.Error("expected A->B transition to fire")
	}
	// Back to A after the cooldown from B has expired.
	if !g.ShouldFire("a", now.Add(7*time.Second)) {
		t.Error("expected B->A transition to fire")
	}
}

func TestCooldownGate_FiresAfterCooldownExpiry(t *testing.T) {
	g := NewCooldownGate(5 * time.Second)
	now := time.Unix(1000, 0)

	g.ShouldFire("a", now)
	if g.ShouldFire("a", now.Add(5*time.Second)) {
		t.Error("expected same gesture at exactly the cooldown boundary to be suppressed")
	}
	if !g.ShouldFire("a", now.Add(5*time.Second+time.Millisecond)) {
		t.Error("expected same gesture after cooldown expiry to fire")
	}
}
