package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if c.Server.FrameRate <= 0 {
		return fmt.Errorf("server.frame_rate must be > 0 (got %v)", c.Server.FrameRate)
	}
	if c.Server.FrameBurst < 1 {
		return fmt.Errorf("server.frame_burst must be >= 1 (got %d)", c.Server.FrameBurst)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0 (got %v)", c.Server.ShutdownTimeout)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path must be set")
	}

	if err := c.Recognition.validate(); err != nil {
		return fmt.Errorf("recognition: %w", err)
	}

	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("camera: width and height must be > 0 (got %dx%d)", c.Camera.Width, c.Camera.Height)
	}
	if !unit(c.Camera.MotionThreshold) {
		return fmt.Errorf("camera.motion_threshold must be in [0,1] (got %v)", c.Camera.MotionThreshold)
	}
	if !unit(c.Detector.MinConfidence) {
		return fmt.Errorf("detector.min_confidence must be in [0,1] (got %v)", c.Detector.MinConfidence)
	}

	if c.Output.Plugin != "" && c.Output.Timeout <= 0 {
		return fmt.Errorf("output.timeout must be > 0 (got %v)", c.Output.Timeout)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}

	return nil
}

func (r *RecognitionConfig) validate() error {
	if !unit(r.RejectThreshold) {
		return fmt.Errorf("reject_threshold must be in [0,1] (got %v)", r.RejectThreshold)
	}
	if !unit(r.AcceptThreshold) {
		return fmt.Errorf("accept_threshold must be in [0,1] (got %v)", r.AcceptThreshold)
	}
	if r.RepeatInterval < 0 {
		return fmt.Errorf("repeat_interval must be >= 0 (got %v)", r.RepeatInterval)
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
