// Package metrics exposes Prometheus instrumentation for the recognition
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters for the capture and recognition stages.
// Each Metrics value carries its own registry so tests can create instances
// freely without duplicate-registration panics.
type Metrics struct {
	registry          *prometheus.Registry
	framesPublished   prometheus.Counter
	framesDropped     prometheus.Counter
	frameReadFailures prometheus.Counter
	cameraReopens     prometheus.Counter
	handsDetected     prometheus.Counter
	posesMatched      prometheus.Counter
	triggersFired     prometheus.Counter
	storeErrors       prometheus.Counter
}

// New creates and registers the pipeline metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	framesPublished := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mudra_frames_published_total",
		Help: "Total frames captured and published to the frame channel",
	})
	framesDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mudra_frames_dropped_total",
		Help: "Total undelivered frames overwritten by a newer frame",
	})
	frameReadFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mudra_frame_read_failures_total",
		Help: "Total camera read failures",
	})
	cameraReopens := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mudra_camera_reopens_total",
		Help: "Total camera re-initializations after repeated read failures",
	})
	handsDetected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mudra_hands_detected_total",
		Help: "Total hands returned by the landmark detector",
	})
	posesMatched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mudra_poses_matched_total",
		Help: "Total library matches at or above the similarity threshold",
	})
	triggersFired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mudra_triggers_fired_total",
		Help: "Total recognized-gesture triggers that passed the cooldown gate",
	})
	storeErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mudra_store_errors_total",
		Help: "Total persistence failures (gesture store or history)",
	})

	registry.MustRegister(
		framesPublished,
		framesDropped,
		frameReadFailures,
		cameraReopens,
		handsDetected,
		posesMatched,
		triggersFired,
		storeErrors,
	)

	return &Metrics{
		registry:          registry,
		framesPublished:   framesPublished,
		framesDropped:     framesDropped,
		frameReadFailures: frameReadFailures,
		cameraReopens:     cameraReopens,
		handsDetected:     handsDetected,
		posesMatched:      posesMatched,
		triggersFired:     triggersFired,
		storeErrors:       storeErrors,
	}
}

// IncFramesPublished increments the published-frames counter.
func (m *Metrics) IncFramesPublished() { m.framesPublished.Inc() }

// IncFramesDropped increments the dropped-frames counter.
func (m *Metrics) IncFramesDropped() { m.framesDropped.Inc() }

// IncFrameReadFailures increments the read-failure counter.
func (m *Metrics) IncFrameReadFailures() { m.frameReadFailures.Inc() }

// IncCameraReopens increments the camera re-initialization counter.
func (m *Metrics) IncCameraReopens() { m.cameraReopens.Inc() }

// AddHandsDetected adds n to the detected-hands counter.
func (m *Metrics) AddHandsDetected(n int) { m.handsDetected.Add(float64(n)) }

// IncPosesMatched increments the library-match counter.
func (m *Metrics) IncPosesMatched() { m.posesMatched.Inc() }

// IncTriggersFired increments the trigger counter.
func (m *Metrics) IncTriggersFired() { m.triggersFired.Inc() }

// IncStoreErrors increments the persistence-failure counter.
func (m *Metrics) IncStoreErrors() { m.storeErrors.Inc() }

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format. The application does not open a network listener; this
// exists for embedders and tests that want to scrape the counters.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
