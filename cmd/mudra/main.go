package main

import (
	"fmt"
	"os"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/history"
	"github.com/ayusman/mudra/internal/library"
	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/speech"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	fmt.Println("Mudra - Hand Gesture to Speech")

	// .env is optional; system env and defaults cover everything.
	_ = config.Load()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Error("failed to create data directory", "path", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	// Load the gesture library, seeding defaults on first run.
	libStore := library.NewStore(cfg.GesturesPath, log)
	lib, err := libStore.Load()
	if err != nil {
		log.Error("failed to load gesture library", "path", cfg.GesturesPath, "error", err)
		os.Exit(1)
	}
	log.Info("gesture library loaded", "path", cfg.GesturesPath, "gestures", lib.Len())

	// History is best-effort; recognition works without it.
	var hist *history.Store
	if h, err := history.New(cfg.HistoryPath); err != nil {
		log.Warn("recognition history unavailable", "path", cfg.HistoryPath, "error", err)
	} else {
		hist = h
		defer hist.Close()
	}

	met := metrics.New()

	camera := capture.NewCamera(capture.Options{
		DeviceID:    cfg.CameraID,
		Resolutions: cfg.Resolutions,
		FPS:         cfg.CameraFPS,
		Logger:      log,
		Metrics:     met,
	})

	// Try MediaPipe first, fall back to the mock detector.
	var det detector.Detector
	if mp, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.MaxHands,
		MinConfidence:   cfg.MinConfidence,
		MinTrackingConf: cfg.MinTrackingConf,
	}); err == nil {
		det = mp
		log.Info("using MediaPipe hand detection")
	} else {
		log.Warn("MediaPipe not available, using mock detector", "error", err)
		det = detector.NewMockDetector()
	}

	var speaker speech.Speaker
	if cfg.SpeechCommand != "" {
		speaker = speech.NewExecSpeaker(cfg.SpeechCommand, nil, cfg.SpeechLanguage, cfg.SpeechSlow, cfg.SpeechTimeout)
		log.Info("speech enabled", "command", cfg.SpeechCommand, "language", cfg.SpeechLanguage)
	} else {
		speaker = speech.NewNop()
		log.Warn("no speech command configured, triggers will be silent")
	}

	a := app.New(app.Config{
		Camera:              camera,
		Detector:            det,
		Library:             lib,
		Store:               libStore,
		History:             hist,
		Speaker:             speaker,
		Metrics:             met,
		Logger:              log,
		TickInterval:        cfg.TickInterval,
		SimilarityThreshold: cfg.SimilarityThreshold,
		SmoothingWindow:     cfg.SmoothingWindow,
		Cooldown:            cfg.Cooldown,
		ShapeRanges:         gesture.DefaultShapeRanges(),
		EnrollSamples:       cfg.EnrollSamples,
		EnrollInterval:      cfg.EnrollInterval,
	})

	tr := tray.New()
	a.OnTrigger(func(m gesture.Match) {
		tr.SetLastPhrase(m.Message)
	})
	a.OnClassify(func(c gesture.Classification) {
		// Matches show up here on every tick; only cooldown-gated triggers
		// reach the info log.
		if c.Kind == gesture.KindLibraryMatch {
			log.Debug("pose matched", "name", c.Match.Name, "score", c.Match.Score)
		}
	})
	tr.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
		log.Info("recognition toggled", "enabled", enabled)
	})
	tr.OnQuit(func() {
		a.Stop()
	})

	if err := a.Start(); err != nil {
		log.Error("failed to start recognition pipeline", "error", err)
		os.Exit(1)
	}

	// Blocks until quit is selected from the tray menu.
	tr.Run()
}
