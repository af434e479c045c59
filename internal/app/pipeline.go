package app

import (
	"context"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
)

// runPipeline is the main recognition loop. Each tick it takes the newest
// frame, runs hand detection, classifies and smooths the hand shape, matches
// against the reference library and fires the speech trigger through the
// cooldown gate.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(a.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		// A stopped camera is terminal: reopening already failed.
		if a.config.Camera.State() == capture.StateStopped {
			a.log.Error("camera stopped permanently, ending pipeline")
			return
		}

		// Disabled means frames are left for other consumers, such as a
		// running enrollment.
		if !a.IsEnabled() {
			continue
		}

		frame, ok := a.config.Camera.Frame()
		if !ok {
			continue
		}

		hands, err := a.config.Detector.Detect(frame.Mat)
		frame.Close()
		if err != nil {
			// Detection errors degrade to "no hands seen" for this tick.
			a.log.Debug("hand detection failed", "error", err)
			continue
		}
		if len(hands) == 0 {
			continue
		}
		if a.config.Metrics != nil {
			a.config.Metrics.AddHandsDetected(len(hands))
		}

		for i := range hands {
			flat := hands[i].Flat()

			// Coarse shape feedback, independent of the library lookup.
			tag := gesture.ClassifyShape(flat, a.config.ShapeRanges)
			stable := a.smoother.Observe(tag)
			if stable != gesture.TagUnknown {
				a.log.Debug("stable hand shape", "shape", stable)
				a.classify(gesture.Classification{Kind: gesture.KindHeuristic, Tag: stable})
			}

			match, ok := a.matcher.FindBestMatch(flat)
			if !ok {
				continue
			}
			if a.config.Metrics != nil {
				a.config.Metrics.IncPosesMatched()
			}
			a.classify(gesture.Classification{Kind: gesture.KindLibraryMatch, Match: match})

			if !a.gate.ShouldFire(match.ID, time.Now()) {
				continue
			}
			a.trigger(match)
		}
	}
}

// classify reports one classification result to the registered listener.
func (a *App) classify(c gesture.Classification) {
	if a.onClassify != nil {
		a.onClassify(c)
	}
}

// trigger voices a matched gesture and records it in the history.
func (a *App) trigger(m *gesture.Match) {
	a.log.Info("gesture recognized", "name", m.Name, "score", m.Score)
	if a.config.Metrics != nil {
		a.config.Metrics.IncTriggersFired()
	}

	if a.config.History != nil {
		if _, err := a.config.History.Events().Record(m.ID, m.Name, m.Message, m.Score); err != nil {
			a.log.Warn("failed to record recognition event", "error", err)
			if a.config.Metrics != nil {
				a.config.Metrics.IncStoreErrors()
			}
		}
	}

	if a.onTrigger != nil {
		a.onTrigger(*m)
	}

	// Speech runs async so a slow synthesizer never stalls recognition.
	go func() {
		if err := a.config.Speaker.Speak(context.Background(), m.Message); err != nil {
			a.log.Error("speech failed", "message", m.Message, "error", err)
		}
	}()
}
