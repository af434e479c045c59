// Package capture provides camera acquisition using GoCV (OpenCV) and the
// single-slot frame channel the recognition pipeline consumes from.
package capture

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Frame is one captured video frame. The Mat is exclusively owned by
// whichever side currently holds the Frame: the camera while capturing, the
// consumer after TryTake. The holder must Close it.
type Frame struct {
	Mat       *gocv.Mat
	Width     int
	Height    int
	Timestamp time.Time
}

// Close releases the underlying pixel buffer. Safe to call more than once.
func (f *Frame) Close() {
	if f == nil || f.Mat == nil {
		return
	}
	f.Mat.Close()
	f.Mat = nil
}

// FrameChannel is a single-slot overwrite buffer between the camera goroutine
// and the pipeline goroutine. Publishing never blocks the producer and taking
// never blocks the consumer; at most one frame is ever queued, and the
// consumer only ever sees the most recent one. Lossiness is deliberate: the
// camera must never be throttled by a slow consumer, and the consumer must
// never process a stale frame.
type FrameChannel struct {
	mu   sync.Mutex
	slot *Frame
}

// NewFrameChannel creates an empty FrameChannel.
func NewFrameChannel() *FrameChannel {
	return &FrameChannel{}
}

// Publish replaces any queued frame with f, closing the frame it displaces.
// Returns true when an undelivered frame was dropped.
func (c *FrameChannel) Publish(f *Frame) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := c.slot != nil
	if dropped {
		c.slot.Close()
	}
	c.slot = f
	return dropped
}

// TryTake removes and returns the queued frame, or (nil, false) when the
// channel is empty. Ownership of the frame transfers to the caller.
func (c *FrameChannel) TryTake() (*Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.slot == nil {
		return nil, false
	}
	f := c.slot
	c.slot = nil
	return f, true
}

// Drain closes and discards any queued frame.
func (c *FrameChannel) Drain() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.slot != nil {
		c.slot.Close()
		c.slot = nil
	}
}
