package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Device is the raw video capture handle the Camera drives. The seam exists
// so camera logic (resolution ladder, retry, reopen) is testable without
// hardware; production code uses the gocv-backed implementation.
type Device interface {
	// Set applies a capture property (best-effort; devices may ignore it).
	Set(prop gocv.VideoCaptureProperties, value float64)

	// Get reads back a capture property as the device reports it.
	Get(prop gocv.VideoCaptureProperties) float64

	// Read grabs one frame into dst. Returns false on failure.
	Read(dst *gocv.Mat) bool

	// IsOpened reports whether the device handle is usable.
	IsOpened() bool

	// Close releases the device.
	Close() error
}

// DeviceOpener acquires a Device by id. Camera calls it on open and again on
// every re-initialization.
type DeviceOpener func(deviceID int) (Device, error)

type videoCaptureDevice struct {
	capture *gocv.VideoCapture
}

// OpenVideoCapture opens a hardware capture device through gocv.
func OpenVideoCapture(deviceID int) (Device, error) {
	capture, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("open capture device %d: %w", deviceID, err)
	}
	return &videoCaptureDevice{capture: capture}, nil
}

func (d *videoCaptureDevice) Set(prop gocv.VideoCaptureProperties, value float64) {
	d.capture.Set(prop, value)
}

func (d *videoCaptureDevice) Get(prop gocv.VideoCaptureProperties) float64 {
	return d.capture.Get(prop)
}

func (d *videoCaptureDevice) Read(dst *gocv.Mat) bool {
	return d.capture.Read(dst)
}

func (d *videoCaptureDevice) IsOpened() bool {
	return d.capture.IsOpened()
}

func (d *videoCaptureDevice) Close() error {
	return d.capture.Close()
}
