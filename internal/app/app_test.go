package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/library"
)

// stubDevice is a capture device that always delivers 640x360 frames.
type stubDevice struct{}

func (stubDevice) Set(gocv.VideoCaptureProperties, float64) {}

func (stubDevice) Get(prop gocv.VideoCaptureProperties) float64 {
	switch prop {
	case gocv.VideoCaptureFrameWidth:
		return 640
	case gocv.VideoCaptureFrameHeight:
		return 360
	}
	return 0
}

func (stubDevice) Read(dst *gocv.Mat) bool {
	tmp := gocv.NewMatWithSize(360, 640, gocv.MatTypeCV8UC3)
	defer tmp.Close()
	tmp.CopyTo(dst)
	return true
}

func (stubDevice) IsOpened() bool { return true }
func (stubDevice) Close() error   { return nil }

// recordSpeaker remembers every spoken message.
type recordSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

func (s *recordSpeaker) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
	return nil
}

func (s *recordSpeaker) Close() error { return nil }

func (s *recordSpeaker) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func testCamera() *capture.Camera {
	return capture.NewCamera(capture.Options{
		Resolutions: []capture.Resolution{{Width: 640, Height: 360}},
		Opener:      func(int) (capture.Device, error) { return stubDevice{}, nil },
	})
}

// handFromPose rebuilds detector output from a stored reference pose.
func handFromPose(t *testing.T, p *library.ReferencePose) detector.HandLandmarks {
	t.Helper()
	hand, err := detector.FromFlat(p.Landmarks)
	if err != nil {
		t.Fatalf("reference pose %q has invalid landmarks: %v", p.Name, err)
	}
	return *hand
}

type testRig struct {
	app             *App
	detector        *detector.MockDetector
	speaker         *recordSpeaker
	triggers        chan gesture.Match
	classifications chan gesture.Classification
}

func newTestRig(t *testing.T, cfg Config) *testRig {
	t.Helper()
	rig := &testRig{
		detector:        detector.NewMockDetector(),
		speaker:         &recordSpeaker{},
		triggers:        make(chan gesture.Match, 16),
		classifications: make(chan gesture.Classification, 64),
	}

	if cfg.Library == nil {
		cfg.Library = library.DefaultLibrary()
	}
	cfg.Camera = testCamera()
	cfg.Detector = rig.detector
	cfg.Speaker = rig.speaker
	if cfg.TickInterval == 0 {
		cfg.TickInterval = 5 * time.Millisecond
	}
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = 0.7
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = 5 * time.Second
	}

	rig.app = New(cfg)
	rig.app.OnTrigger(func(m gesture.Match) { rig.triggers <- m })
	rig.app.OnClassify(func(c gesture.Classification) {
		select {
		case rig.classifications <- c:
		default: // keep the pipeline moving when nobody drains these
		}
	})
	t.Cleanup(rig.app.Stop)
	return rig
}

func (r *testRig) waitTrigger(t *testing.T) gesture.Match {
	t.Helper()
	select {
	case m := <-r.triggers:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no trigger fired in time")
		return gesture.Match{}
	}
}

func (r *testRig) expectNoTrigger(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case m := <-r.triggers:
		t.Fatalf("unexpected trigger for %q", m.Name)
	case <-time.After(d):
	}
}

func TestPipelineTriggersOnMatch(t *testing.T) {
	lib := library.DefaultLibrary()
	pose := lib.All()[0]
	rig := newTestRig(t, Config{Library: lib})
	rig.detector.SetHands([]detector.HandLandmarks{handFromPose(t, pose)})

	if err := rig.app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	m := rig.waitTrigger(t)
	if m.ID != pose.ID {
		t.Errorf("trigger id = %q, want %q", m.ID, pose.ID)
	}
	if m.Message != pose.Message {
		t.Errorf("trigger message = %q, want %q", m.Message, pose.Message)
	}
	if m.Score < 0.99 {
		t.Errorf("trigger score = %v, want ~1.0 for an exact pose", m.Score)
	}

	// The matched message is what gets spoken.
	deadline := time.After(2 * time.Second)
	for len(rig.speaker.messages()) == 0 {
		select {
		case <-deadline:
			t.Fatal("nothing was spoken")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if got := rig.speaker.messages()[0]; got != pose.Message {
		t.Errorf("spoke %q, want %q", got, pose.Message)
	}
}

func TestClassificationsCarryBothKinds(t *testing.T) {
	lib := library.DefaultLibrary()
	pose := lib.All()[0]
	rig := newTestRig(t, Config{
		Library: lib,
		// One catch-all band so any detected hand picks up a shape tag.
		ShapeRanges: []gesture.ShapeRange{{Tag: "hand", Min: 0, Max: 100}},
	})
	rig.detector.SetHands([]detector.HandLandmarks{handFromPose(t, pose)})

	if err := rig.app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var sawHeuristic, sawMatch bool
	deadline := time.After(2 * time.Second)
	for !sawHeuristic || !sawMatch {
		select {
		case c := <-rig.classifications:
			switch c.Kind {
			case gesture.KindHeuristic:
				if c.Tag != "hand" {
					t.Fatalf("heuristic tag = %q, want %q", c.Tag, "hand")
				}
				sawHeuristic = true
			case gesture.KindLibraryMatch:
				if c.Match == nil || c.Match.ID != pose.ID {
					t.Fatalf("library match = %+v, want pose %q", c.Match, pose.ID)
				}
				sawMatch = true
			}
		case <-deadline:
			t.Fatalf("missing classifications: heuristic=%v match=%v", sawHeuristic, sawMatch)
		}
	}
}

func TestCooldownSuppressesRepeats(t *testing.T) {
	lib := library.DefaultLibrary()
	pose := lib.All()[0]
	rig := newTestRig(t, Config{Library: lib, Cooldown: 5 * time.Second})
	rig.detector.SetHands([]detector.HandLandmarks{handFromPose(t, pose)})

	if err := rig.app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	rig.waitTrigger(t)
	// The same pose held steady must not fire again inside the cooldown.
	rig.expectNoTrigger(t, 300*time.Millisecond)
}

func TestDisabledProcessesNothing(t *testing.T) {
	lib := library.DefaultLibrary()
	rig := newTestRig(t, Config{Library: lib})
	rig.detector.SetHands([]detector.HandLandmarks{handFromPose(t, lib.All()[0])})

	if err := rig.app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rig.app.SetEnabled(false)
	// Give the pipeline a moment to notice, then drain anything already fired.
	time.Sleep(50 * time.Millisecond)
	for {
		select {
		case <-rig.triggers:
			continue
		default:
		}
		break
	}
	rig.expectNoTrigger(t, 300*time.Millisecond)
}

func TestStopIdempotent(t *testing.T) {
	rig := newTestRig(t, Config{})
	if err := rig.app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rig.app.Stop()
	rig.app.Stop()
}

func TestEnroll(t *testing.T) {
	lib := library.New()
	store := library.NewStore(filepath.Join(t.TempDir(), "gestures.json"), nil)
	rig := newTestRig(t, Config{
		Library:        lib,
		Store:          store,
		EnrollSamples:  3,
		EnrollInterval: time.Millisecond,
	})

	ref := library.Defaults()[0]
	rig.detector.SetHands([]detector.HandLandmarks{handFromPose(t, ref)})

	if err := rig.app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	pose, err := rig.app.Enroll(context.Background(), "Wave", "HELLO THERE")
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if pose.Name != "Wave" || pose.Message != "HELLO THERE" {
		t.Errorf("pose = %+v, want name/message carried through", pose)
	}
	if len(pose.Landmarks) != detector.FlatLen {
		t.Fatalf("pose has %d landmark values, want %d", len(pose.Landmarks), detector.FlatLen)
	}
	// All samples were identical, so the average equals the source.
	for i, v := range ref.Landmarks {
		if diff := pose.Landmarks[i] - v; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("landmark %d = %v, want %v", i, pose.Landmarks[i], v)
		}
	}
	if _, ok := lib.Get(pose.ID); !ok {
		t.Error("enrolled pose not registered in the library")
	}

	// The pose survived a save/load round trip.
	reloaded, err := store.Load()
	if err != nil {
		t.Fatalf("reloading library: %v", err)
	}
	if _, ok := reloaded.Get(pose.ID); !ok {
		t.Error("enrolled pose not persisted")
	}
}

func TestEnrollNoHand(t *testing.T) {
	rig := newTestRig(t, Config{
		Library:        library.New(),
		EnrollSamples:  2,
		EnrollInterval: time.Millisecond,
	})
	// Detector sees no hands at all.

	if err := rig.app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err := rig.app.Enroll(context.Background(), "Wave", "HELLO")
	if !errors.Is(err, ErrNoHandDetected) {
		t.Fatalf("Enroll = %v, want ErrNoHandDetected", err)
	}
}

func TestEnrollValidatesInput(t *testing.T) {
	rig := newTestRig(t, Config{Library: library.New()})
	if _, err := rig.app.Enroll(context.Background(), "", "msg"); err == nil {
		t.Error("Enroll accepted an empty name")
	}
	if _, err := rig.app.Enroll(context.Background(), "name", ""); err == nil {
		t.Error("Enroll accepted an empty message")
	}
}

func TestEnrollRestoresEnabledState(t *testing.T) {
	rig := newTestRig(t, Config{
		Library:        library.New(),
		EnrollSamples:  1,
		EnrollInterval: time.Millisecond,
	})
	rig.detector.SetHands([]detector.HandLandmarks{handFromPose(t, library.Defaults()[0])})

	if err := rig.app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := rig.app.Enroll(context.Background(), "Wave", "HELLO"); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if !rig.app.IsEnabled() {
		t.Error("recognition not re-enabled after enrollment")
	}
}
