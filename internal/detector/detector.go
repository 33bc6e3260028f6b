package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector finds hands in a frame. Implementations are safe for use by one
// goroutine at a time.
type Detector interface {
	// Detect returns the landmarks of each hand in frame, or none. The
	// fingerspelling setup asks for one hand, so at most one comes back.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config tunes the MediaPipe landmark service.
type Config struct {
	MaxHands int
	// MinConfidence and MinTrackingConf are MediaPipe's detection and
	// tracking thresholds, both in [0,1].
	MinConfidence   float64
	MinTrackingConf float64

	// ScriptPath and PythonPath locate the service. Empty values are
	// searched for; the interpreter falls back to python3.
	ScriptPath string
	PythonPath string

	// IdleTimeout stops the service after this long without frames. It is
	// restarted on the next frame.
	IdleTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}
