// Package app wires the capture, detection, matching and speech components
// into the recognition pipeline.
package app

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/history"
	"github.com/ayusman/mudra/internal/library"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/speech"
)

// Config holds the components and tuning the App runs with.
type Config struct {
	Camera   *capture.Camera
	Detector detector.Detector
	Library  *library.Library
	Store    *library.Store // gesture persistence, may be nil
	History  *history.Store // recognition history, may be nil
	Speaker  speech.Speaker
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	TickInterval        time.Duration
	SimilarityThreshold float64
	SmoothingWindow     int
	Cooldown            time.Duration
	ShapeRanges         []gesture.ShapeRange

	EnrollSamples  int
	EnrollInterval time.Duration
}

// App is the main application orchestrating gesture recognition and speech.
type App struct {
	config   Config
	log      *slog.Logger
	matcher  *gesture.Matcher
	smoother *gesture.ShapeSmoother
	gate     *gesture.CooldownGate
	trainer  *gesture.Trainer

	// onTrigger is invoked for every spoken trigger, after the cooldown
	// gate passes. onClassify sees every classification result, heuristic
	// shape tags and library matches alike. Both are set before Start.
	onTrigger  func(gesture.Match)
	onClassify func(gesture.Classification)

	mu      sync.RWMutex
	enabled bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Speaker == nil {
		config.Speaker = speech.NewNop()
	}
	if config.TickInterval <= 0 {
		config.TickInterval = 30 * time.Millisecond
	}
	if config.SmoothingWindow <= 0 {
		config.SmoothingWindow = 5
	}
	if len(config.ShapeRanges) == 0 {
		config.ShapeRanges = gesture.DefaultShapeRanges()
	}

	return &App{
		config:   config,
		log:      config.Logger,
		matcher:  gesture.NewMatcher(config.Library, config.SimilarityThreshold, config.Logger),
		smoother: gesture.NewShapeSmoother(config.SmoothingWindow),
		gate:     gesture.NewCooldownGate(config.Cooldown),
		trainer:  gesture.NewTrainer(),
		enabled:  true,
	}
}

// SetEnabled enables or disables gesture recognition. The camera keeps
// streaming either way; disabled means frames are discarded unprocessed.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()
	if !enabled {
		a.smoother.Reset()
	}
}

// IsEnabled returns whether gesture recognition is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// OnTrigger registers a callback invoked for every spoken trigger. Must be
// called before Start.
func (a *App) OnTrigger(fn func(gesture.Match)) {
	a.onTrigger = fn
}

// OnClassify registers a callback invoked for every classification result.
// Must be called before Start.
func (a *App) OnClassify(fn func(gesture.Classification)) {
	a.onClassify = fn
}

// Library returns the reference pose library.
func (a *App) Library() *library.Library {
	return a.config.Library
}

// Start opens the camera and begins the recognition pipeline. Blocks until
// the camera produced its first frame or failed to warm up.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.config.Camera.Open(); err != nil {
		return err
	}

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(a.stopCh, a.doneCh)

	a.log.Info("recognition pipeline started")
	return nil
}

// Stop halts the pipeline and releases all resources. Idempotent.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, doneCh := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}

	a.config.Camera.Close()

	if a.config.Detector != nil {
		if err := a.config.Detector.Close(); err != nil {
			a.log.Warn("error closing detector", "error", err)
		}
	}
	if err := a.config.Speaker.Close(); err != nil {
		a.log.Warn("error closing speaker", "error", err)
	}

	a.log.Info("recognition pipeline stopped")
}
