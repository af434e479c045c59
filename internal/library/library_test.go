package library

import (
	"testing"
)

func samplePose(id, name string, createdAt int64) *ReferencePose {
	return &ReferencePose{
		ID:        id,
		Name:      name,
		Landmarks: append([]float64(nil), palmLandmarks...),
		Message:   "hello",
		CreatedAt: createdAt,
	}
}

func TestLibrary_InsertionOrder(t *testing.T) {
	l := New()
	l.Add(samplePose("b", "B", 10))
	l.Add(samplePose("a", "A", 20))
	l.Add(samplePose("c", "C", 5))

	got := l.All()
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d poses, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, got[i].ID)
		}
	}
}

func TestLibrary_ReplaceKeepsPosition(t *testing.T) {
	l := New()
	l.Add(samplePose("a", "A", 1))
	l.Add(samplePose("b", "B", 2))
	l.Add(samplePose("a", "A updated", 3))

	got := l.All()
	if len(got) != 2 {
		t.Fatalf("expected 2 poses, got %d", len(got))
	}
	if got[0].ID != "a" || got[0].Name != "A updated" {
		t.Errorf("expected updated pose 'a' first, got %q (%q)", got[0].ID, got[0].Name)
	}
}

func TestLibrary_Delete(t *testing.T) {
	l := New()
	l.Add(samplePose("a", "A", 1))
	l.Add(samplePose("b", "B", 2))

	if !l.Delete("a") {
		t.Error("expected Delete to report success for existing pose")
	}
	if l.Delete("a") {
		t.Error("expected Delete to report failure for missing pose")
	}
	if l.Len() != 1 {
		t.Errorf("expected 1 pose after delete, got %d", l.Len())
	}
	if _, ok := l.Get("a"); ok {
		t.Error("deleted pose still retrievable")
	}
}

func TestFromRecords_DeterministicOrder(t *testing.T) {
	records := map[string]*ReferencePose{
		"z": samplePose("z", "Z", 100),
		"m": samplePose("m", "M", 50),
		"a": samplePose("a", "A", 100),
	}

	// Map iteration is randomized, so build repeatedly and require identical order.
	var first []string
	for run := 0; run < 10; run++ {
		l := fromRecords(map[string]*ReferencePose{
			"z": samplePose("z", "Z", 100),
			"m": samplePose("m", "M", 50),
			"a": samplePose("a", "A", 100),
		})
		var ids []string
		for _, p := range l.All() {
			ids = append(ids, p.ID)
		}
		if first == nil {
			first = ids
			continue
		}
		for i := range first {
			if ids[i] != first[i] {
				t.Fatalf("run %d produced order %v, first run produced %v", run, ids, first)
			}
		}
	}

	// created_at ascending, then id ascending.
	l := fromRecords(records)
	got := l.All()
	want := []string{"m", "a", "z"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, got[i].ID)
		}
	}
}

func TestDefaults(t *testing.T) {
	defaults := Defaults()
	if len(defaults) != 3 {
		t.Fatalf("expected 3 default poses, got %d", len(defaults))
	}

	for _, p := range defaults {
		if len(p.Landmarks) != 63 {
			t.Errorf("default %q has %d landmark values, want 63", p.ID, len(p.Landmarks))
		}
		if p.Message == "" {
			t.Errorf("default %q has no message", p.ID)
		}
		if !p.IsDefault {
			t.Errorf("default %q not marked as default", p.ID)
		}
	}
}
