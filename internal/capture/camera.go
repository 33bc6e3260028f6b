// Package capture reads webcam frames through GoCV and gates them on motion.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings.
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrEmptyFrame is returned when the device could not deliver a frame.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Camera is the frame source the recognition pipeline polls.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// Config selects the capture device and resolution. Zero fields take defaults.
type Config struct {
	DeviceID int
	Width    int
	Height   int
	FPS      int
}

func (c Config) withDefaults() Config {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.FPS <= 0 {
		c.FPS = DefaultFPS
	}
	return c
}

// deviceCamera is a Camera backed by a local video device.
type deviceCamera struct {
	cfg Config

	mu  sync.Mutex
	dev *gocv.VideoCapture
}

// NewCamera creates a Camera for cfg.DeviceID. The device is opened by Open.
func NewCamera(cfg Config) Camera {
	return &deviceCamera{cfg: cfg.withDefaults()}
}

// Open opens the device and requests the configured size and rate. Opening
// an open camera is a no-op.
func (c *deviceCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dev != nil {
		return nil
	}

	dev, err := gocv.OpenVideoCapture(c.cfg.DeviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.cfg.DeviceID, err)
	}
	for prop, v := range map[gocv.VideoCaptureProperties]int{
		gocv.VideoCaptureFrameWidth:  c.cfg.Width,
		gocv.VideoCaptureFrameHeight: c.cfg.Height,
		gocv.VideoCaptureFPS:         c.cfg.FPS,
	} {
		dev.Set(prop, float64(v))
	}

	c.dev = dev
	return nil
}

// Close releases the device. Closing a closed camera is a no-op.
func (c *deviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dev == nil {
		return nil
	}
	err := c.dev.Close()
	c.dev = nil
	return err
}

// ReadFrame grabs the next frame. The caller closes the returned Mat.
func (c *deviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dev == nil {
		return nil, ErrCameraNotOpen
	}

	frame := gocv.NewMat()
	if !c.dev.Read(&frame) || frame.Empty() {
		frame.Close()
		return nil, ErrEmptyFrame
	}
	return &frame, nil
}

// SetFPS changes the requested frame rate. Non-positive values are ignored.
func (c *deviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg.FPS = fps
	if c.dev != nil {
		c.dev.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

func (c *deviceCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.FPS
}

func (c *deviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev != nil
}
