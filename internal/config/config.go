// Package config loads fingerspell settings from YAML and the environment.
package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Camera      CameraConfig      `yaml:"camera"`
	Detector    DetectorConfig    `yaml:"detector"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Output      OutputConfig      `yaml:"output"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"FINGERSPELL_ADDR"             env-default:":8080"`
	StaticDir       string        `yaml:"static_dir"       env:"FINGERSPELL_STATIC_DIR"       env-default:"web"`
	FrameRate       float64       `yaml:"frame_rate"       env:"FINGERSPELL_FRAME_RATE"       env-default:"5"`
	FrameBurst      int           `yaml:"frame_burst"      env:"FINGERSPELL_FRAME_BURST"      env-default:"10"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"FINGERSPELL_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// DatabaseConfig holds SQLite settings. A leading ~ expands to the home directory.
type DatabaseConfig struct {
	Path string `yaml:"path" env:"FINGERSPELL_DB_PATH" env-default:"~/.fingerspell/fingerspell.db"`
}

// CameraConfig holds capture settings.
type CameraConfig struct {
	Enabled         bool    `yaml:"enabled"          env:"FINGERSPELL_CAMERA"           env-default:"false"`
	DeviceID        int     `yaml:"device_id"        env:"FINGERSPELL_CAMERA_DEVICE"    env-default:"0"`
	Width           int     `yaml:"width"            env:"FINGERSPELL_CAMERA_WIDTH"     env-default:"640"`
	Height          int     `yaml:"height"           env:"FINGERSPELL_CAMERA_HEIGHT"    env-default:"480"`
	MotionThreshold float64 `yaml:"motion_threshold" env:"FINGERSPELL_MOTION_THRESHOLD" env-default:"0.02"`
}

// DetectorConfig holds landmark service settings.
type DetectorConfig struct {
	ScriptPath    string        `yaml:"script_path"    env:"FINGERSPELL_DETECTOR_SCRIPT"`
	PythonPath    string        `yaml:"python_path"    env:"FINGERSPELL_DETECTOR_PYTHON"`
	IdleTimeout   time.Duration `yaml:"idle_timeout"   env:"FINGERSPELL_DETECTOR_IDLE"           env-default:"30s"`
	MinConfidence float64       `yaml:"min_confidence" env:"FINGERSPELL_DETECTOR_MIN_CONFIDENCE" env-default:"0.5"`
}

// RecognitionConfig holds the two classification gates. RejectThreshold is
// applied by the classifier; AcceptThreshold is applied to its result before
// a letter is reported to users or plugins.
type RecognitionConfig struct {
	RejectThreshold float64       `yaml:"reject_threshold" env:"FINGERSPELL_REJECT_THRESHOLD" env-default:"0.7"`
	AcceptThreshold float64       `yaml:"accept_threshold" env:"FINGERSPELL_ACCEPT_THRESHOLD" env-default:"0.6"`
	RepeatInterval  time.Duration `yaml:"repeat_interval"  env:"FINGERSPELL_REPEAT_INTERVAL"  env-default:"1s"`
}

// OutputConfig selects where recognized letters are sent.
type OutputConfig struct {
	PluginDir string        `yaml:"plugin_dir" env:"FINGERSPELL_PLUGIN_DIR" env-default:"~/.fingerspell/plugins"`
	Plugin    string        `yaml:"plugin"     env:"FINGERSPELL_OUTPUT_PLUGIN"`
	Action    string        `yaml:"action"     env:"FINGERSPELL_OUTPUT_ACTION" env-default:"type"`
	Timeout   time.Duration `yaml:"timeout"    env:"FINGERSPELL_OUTPUT_TIMEOUT" env-default:"5s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"FINGERSPELL_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"FINGERSPELL_LOG_FORMAT" env-default:"text"`
	File   string `yaml:"file"   env:"FINGERSPELL_LOG_FILE"`
}
