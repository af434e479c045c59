package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/metrics"
)

// Camera timing and retry policy.
const (
	// DefaultFPS is the preferred capture rate, applied best-effort.
	DefaultFPS = 30

	// maxReadFailures is how many consecutive read failures are tolerated
	// before the device is fully re-initialized.
	maxReadFailures = 5

	// readRetryDelay spaces out retries after a failed read.
	readRetryDelay = 100 * time.Millisecond

	// warmupTimeout bounds how long Open waits for the first frame.
	warmupTimeout = 5 * time.Second

	// joinTimeout bounds how long Close waits for the acquisition loop.
	joinTimeout = 2 * time.Second
)

var (
	// ErrDeviceUnavailable is returned by Open when no capture device could
	// be acquired at all.
	ErrDeviceUnavailable = errors.New("no capture device available")

	// ErrWarmupTimeout is returned by Open when the device opened but
	// produced no frame within the warm-up window.
	ErrWarmupTimeout = errors.New("timed out waiting for first frame")

	// ErrReinitFailed marks a failed re-initialization after repeated read
	// failures; the camera is permanently stopped.
	ErrReinitFailed = errors.New("camera re-initialization failed")
)

// State describes the camera lifecycle.
type State int32

const (
	StateUninitialized State = iota
	StateOpening
	StateStreaming
	StateFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateOpening:
		return "opening"
	case StateStreaming:
		return "streaming"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Resolution is a requested capture size.
type Resolution struct {
	Width  int
	Height int
}

// DefaultResolutions is the 16:9 ladder tried widest-first on open.
func DefaultResolutions() []Resolution {
	return []Resolution{
		{1920, 1080},
		{1600, 900},
		{1366, 768},
		{1280, 720},
		{1024, 576},
		{854, 480},
		{640, 360},
	}
}

// Options configures a Camera.
type Options struct {
	DeviceID    int
	Resolutions []Resolution
	FPS         int
	Opener      DeviceOpener // defaults to OpenVideoCapture
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
}

// Camera owns the capture device and the acquisition goroutine. Captured
// frames are mirrored horizontally (a natural, mirror-facing view) and
// published to an internal FrameChannel; consumers poll Frame.
type Camera struct {
	opts    Options
	channel *FrameChannel
	log     *slog.Logger
	met     *metrics.Metrics

	state atomic.Int32

	mu            sync.Mutex
	device        Device
	width, height int
	stopCh        chan struct{}
	doneCh        chan struct{}
	firstFrame    chan struct{}
	firstOnce     *sync.Once
	stopSignalled bool
}

// NewCamera creates a Camera from opts, filling unset fields with defaults.
func NewCamera(opts Options) *Camera {
	if opts.Opener == nil {
		opts.Opener = OpenVideoCapture
	}
	if len(opts.Resolutions) == 0 {
		opts.Resolutions = DefaultResolutions()
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Camera{
		opts:    opts,
		channel: NewFrameChannel(),
		log:     opts.Logger,
		met:     opts.Metrics,
	}
}

// State returns the current lifecycle state.
func (c *Camera) State() State {
	return State(c.state.Load())
}

func (c *Camera) setState(s State) {
	c.state.Store(int32(s))
}

// Resolution returns the actual capture size the device reported.
func (c *Camera) Resolution() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Frame returns the most recent captured frame, or false when none is
// queued. Never blocks. The caller owns the returned frame.
func (c *Camera) Frame() (*Frame, bool) {
	return c.channel.TryTake()
}

// Open acquires the device, starts the acquisition loop and blocks until the
// first frame has been captured or the warm-up timeout elapses, so callers
// never proceed with an un-warmed camera. Returns ErrDeviceUnavailable when
// no device can be opened.
func (c *Camera) Open() error {
	c.mu.Lock()
	switch c.State() {
	case StateOpening, StateStreaming:
		c.mu.Unlock()
		return nil
	}
	c.setState(StateOpening)

	if err := c.openDeviceLocked(); err != nil {
		c.setState(StateUninitialized)
		c.mu.Unlock()
		return err
	}

	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.firstFrame = make(chan struct{})
	c.firstOnce = new(sync.Once)
	c.stopSignalled = false
	c.setState(StateStreaming)

	firstFrame := c.firstFrame
	doneCh := c.doneCh
	go c.run()
	c.mu.Unlock()

	select {
	case <-firstFrame:
		return nil
	case <-doneCh:
		// The loop already gave up: reads kept failing and re-open failed too.
		c.Close()
		return ErrReinitFailed
	case <-time.After(warmupTimeout):
		c.Close()
		return ErrWarmupTimeout
	}
}

// openDeviceLocked acquires the device and negotiates its settings. Walks the
// resolution ladder widest-first and keeps the first size the device reports
// back verbatim; if none sticks, the device default stays. The frame rate is
// applied best-effort. Caller holds c.mu.
func (c *Camera) openDeviceLocked() error {
	dev, err := c.opts.Opener(c.opts.DeviceID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if !dev.IsOpened() {
		dev.Close()
		return ErrDeviceUnavailable
	}

	matched := false
	for _, res := range c.opts.Resolutions {
		dev.Set(gocv.VideoCaptureFrameWidth, float64(res.Width))
		dev.Set(gocv.VideoCaptureFrameHeight, float64(res.Height))
		if int(dev.Get(gocv.VideoCaptureFrameWidth)) == res.Width &&
			int(dev.Get(gocv.VideoCaptureFrameHeight)) == res.Height {
			matched = true
			break
		}
	}

	c.width = int(dev.Get(gocv.VideoCaptureFrameWidth))
	c.height = int(dev.Get(gocv.VideoCaptureFrameHeight))
	if matched {
		c.log.Info("camera resolution set", "width", c.width, "height", c.height)
	} else {
		c.log.Warn("no requested resolution honored, using device default",
			"width", c.width, "height", c.height)
	}

	dev.Set(gocv.VideoCaptureFPS, float64(c.opts.FPS))

	c.device = dev
	return nil
}

// run is the acquisition loop. One read per iteration; failures are retried
// with a short delay, and after maxReadFailures in a row the device is fully
// re-opened. If re-opening fails the loop terminates and the camera is
// permanently stopped.
func (c *Camera) run() {
	c.mu.Lock()
	stopCh := c.stopCh
	doneCh := c.doneCh
	c.mu.Unlock()
	defer close(doneCh)

	failures := 0
	for {
		select {
		case <-stopCh:
			return
		default:
		}

		c.mu.Lock()
		dev := c.device
		c.mu.Unlock()
		if dev == nil {
			return
		}

		mat := gocv.NewMat()
		if !dev.Read(&mat) || mat.Empty() {
			mat.Close()
			failures++
			if c.met != nil {
				c.met.IncFrameReadFailures()
			}
			c.log.Warn("failed to read frame", "attempt", failures, "max", maxReadFailures)

			if failures >= maxReadFailures {
				c.setState(StateFailed)
				if err := c.reopen(); err != nil {
					c.log.Error("camera re-initialization failed, stopping", "error", err)
					c.setState(StateStopped)
					return
				}
				if c.met != nil {
					c.met.IncCameraReopens()
				}
				c.setState(StateStreaming)
				failures = 0
				continue
			}

			select {
			case <-stopCh:
				return
			case <-time.After(readRetryDelay):
			}
			continue
		}

		failures = 0

		mirrored := gocv.NewMat()
		gocv.Flip(mat, &mirrored, 1)
		mat.Close()

		frame := &Frame{
			Mat:       &mirrored,
			Width:     mirrored.Cols(),
			Height:    mirrored.Rows(),
			Timestamp: time.Now(),
		}
		if c.channel.Publish(frame) {
			if c.met != nil {
				c.met.IncFramesDropped()
			}
		}
		if c.met != nil {
			c.met.IncFramesPublished()
		}

		c.firstOnce.Do(func() { close(c.firstFrame) })
	}
}

// reopen releases the current device and runs the full open sequence again.
func (c *Camera) reopen() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Close()
		c.device = nil
	}
	if err := c.openDeviceLocked(); err != nil {
		return fmt.Errorf("%w: %v", ErrReinitFailed, err)
	}
	return nil
}

// Close stops the acquisition loop, joins it with a bounded timeout and
// releases the device unconditionally. Resource safety wins over a clean
// shutdown: the device is released even if the loop failed to stop in time.
// Idempotent.
func (c *Camera) Close() {
	c.mu.Lock()
	stopCh := c.stopCh
	doneCh := c.doneCh
	if stopCh != nil && !c.stopSignalled {
		close(stopCh)
		c.stopSignalled = true
	}
	c.mu.Unlock()

	if doneCh != nil {
		select {
		case <-doneCh:
		case <-time.After(joinTimeout):
			c.log.Warn("acquisition loop did not stop in time, releasing device anyway")
		}
	}

	c.mu.Lock()
	if c.device != nil {
		c.device.Close()
		c.device = nil
	}
	c.mu.Unlock()

	c.channel.Drain()
	c.setState(StateStopped)
}
