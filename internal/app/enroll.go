package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/library"
)

// ErrNoHandDetected is returned by Enroll when no hand was seen in any of
// the sampled frames.
var ErrNoHandDetected = errors.New("no hand detected during enrollment")

// enrollAttemptFactor bounds how many frames Enroll inspects: frames without
// a visible hand don't count as samples, but give up after this many times
// the requested sample count.
const enrollAttemptFactor = 5

// Enroll records a new reference pose. It samples the camera at the
// configured interval, keeps the first detected hand of each frame, averages
// the collected landmark vectors coordinate-wise and registers the result in
// the library under a freshly generated id. Recognition is paused for the
// duration so the pose being taught cannot trigger speech mid-capture.
func (a *App) Enroll(ctx context.Context, name, message string) (*library.ReferencePose, error) {
	if name == "" {
		return nil, errors.New("gesture name must not be empty")
	}
	if message == "" {
		return nil, errors.New("gesture message must not be empty")
	}

	wasEnabled := a.IsEnabled()
	a.SetEnabled(false)
	defer a.SetEnabled(wasEnabled)

	want := a.config.EnrollSamples
	if want <= 0 {
		want = 10
	}
	interval := a.config.EnrollInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	samples := make([][]float64, 0, want)
	for attempts := 0; len(samples) < want && attempts < want*enrollAttemptFactor; attempts++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		frame, ok := a.config.Camera.Frame()
		if !ok {
			continue
		}
		hands, err := a.config.Detector.Detect(frame.Mat)
		frame.Close()
		if err != nil {
			a.log.Debug("hand detection failed during enrollment", "error", err)
			continue
		}
		if len(hands) == 0 {
			continue
		}
		samples = append(samples, hands[0].Flat())
		a.log.Debug("enrollment sample captured", "have", len(samples), "want", want)
	}

	if len(samples) == 0 {
		return nil, ErrNoHandDetected
	}

	avg, err := a.trainer.Average(samples)
	if err != nil {
		return nil, fmt.Errorf("averaging enrollment samples: %w", err)
	}

	now := time.Now()
	pose := &library.ReferencePose{
		ID:        gesture.PoseID(name, now),
		Name:      name,
		Landmarks: avg,
		Message:   message,
		CreatedAt: now.Unix(),
	}
	a.config.Library.Add(pose)
	a.log.Info("gesture enrolled", "id", pose.ID, "name", name, "samples", len(samples))

	if a.config.Store != nil {
		if err := a.config.Store.Save(a.config.Library); err != nil {
			// The pose stays usable in memory even when persistence fails.
			a.log.Error("failed to persist gesture library", "error", err)
			if a.config.Metrics != nil {
				a.config.Metrics.IncStoreErrors()
			}
		}
	}
	if a.config.History != nil {
		if err := a.config.History.Samples().Create(pose.ID, samples); err != nil {
			a.log.Warn("failed to record enrollment samples", "error", err)
			if a.config.Metrics != nil {
				a.config.Metrics.IncStoreErrors()
			}
		}
	}

	return pose, nil
}
