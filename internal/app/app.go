// Package app runs the live fingerspelling pipeline: camera frames are gated
// on motion, passed to the landmark detector, classified, and accepted letters
// are recorded and sent to output plugins.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/fingerspell/internal/capture"
	"github.com/ayusman/fingerspell/internal/config"
	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/logger"
	"github.com/ayusman/fingerspell/internal/plugin"
	"github.com/ayusman/fingerspell/internal/store"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while a hand may be signing.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before dropping back to IdleFPS.
	IdleTimeout = 2 * time.Second
)

// ErrNoDetector is returned by Start when no landmark detector is available.
var ErrNoDetector = errors.New("no hand detector available")

// Config wires the pipeline. Nil components are built from the settings
// fields; Detector is the exception and must be set or created with
// NewDetector before Start.
type Config struct {
	Store      *store.Store
	Camera     capture.Camera
	Motion     *capture.MotionDetector
	Detector   detector.Detector
	Classifier *gesture.Classifier
	Plugins    *plugin.Manager
	Executor   *plugin.Executor

	CameraConfig    capture.Config
	MotionThreshold float64
	AcceptThreshold float64
	RepeatInterval  time.Duration

	PluginDir     string
	PluginTimeout time.Duration
	OutputPlugin  string
	OutputAction  string

	Logger logrus.FieldLogger
}

// ConfigFrom maps loaded settings onto a pipeline Config.
func ConfigFrom(cfg *config.Config, s *store.Store, log logrus.FieldLogger) Config {
	return Config{
		Store: s,
		CameraConfig: capture.Config{
			DeviceID: cfg.Camera.DeviceID,
			Width:    cfg.Camera.Width,
			Height:   cfg.Camera.Height,
			FPS:      IdleFPS,
		},
		Classifier:      gesture.NewClassifier(gesture.WithRejectThreshold(cfg.Recognition.RejectThreshold)),
		MotionThreshold: cfg.Camera.MotionThreshold,
		AcceptThreshold: cfg.Recognition.AcceptThreshold,
		RepeatInterval:  cfg.Recognition.RepeatInterval,
		PluginDir:       cfg.Output.PluginDir,
		PluginTimeout:   cfg.Output.Timeout,
		OutputPlugin:    cfg.Output.Plugin,
		OutputAction:    cfg.Output.Action,
		Logger:          log,
	}
}

// NewDetector starts the MediaPipe landmark service described by cfg.
func NewDetector(cfg *config.Config) (detector.Detector, error) {
	dc := detector.DefaultConfig()
	dc.ScriptPath = cfg.Detector.ScriptPath
	dc.PythonPath = cfg.Detector.PythonPath
	dc.IdleTimeout = cfg.Detector.IdleTimeout
	dc.MinConfidence = cfg.Detector.MinConfidence
	return detector.NewMediaPipeDetector(dc)
}

// Recognition is emitted once per accepted letter.
type Recognition struct {
	Letter     gesture.Letter
	Confidence float64
	// Duration is how long the hand was in view before the letter was accepted.
	Duration time.Duration
	At       time.Time
}

// App orchestrates capture, detection, classification and output.
type App struct {
	config     Config
	log        logrus.FieldLogger
	camera     capture.Camera
	motion     *capture.MotionDetector
	detector   detector.Detector
	classifier *gesture.Classifier
	pluginMgr  *plugin.Manager
	pluginExec *plugin.Executor
	gate       *gate

	mu        sync.RWMutex
	enabled   bool
	callbacks []func(Recognition)
	last      Recognition
	guestID   string

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an App. Detection is enabled by default.
func New(cfg Config) *App {
	a := &App{
		config:     cfg,
		log:        logger.OrDiscard(cfg.Logger).WithField("component", "pipeline"),
		camera:     cfg.Camera,
		motion:     cfg.Motion,
		detector:   cfg.Detector,
		classifier: cfg.Classifier,
		pluginMgr:  cfg.Plugins,
		pluginExec: cfg.Executor,
		enabled:    true,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(cfg.CameraConfig)
	}
	if a.motion == nil {
		a.motion = capture.NewMotionDetector(cfg.MotionThreshold)
	}
	if a.classifier == nil {
		a.classifier = gesture.NewClassifier()
	}
	if a.pluginMgr == nil {
		a.pluginMgr = plugin.NewManager(cfg.PluginDir, a.log)
	}
	if a.pluginExec == nil {
		timeout := cfg.PluginTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		a.pluginExec = plugin.NewExecutor(timeout)
	}
	a.gate = newGate(cfg.AcceptThreshold, cfg.RepeatInterval)

	return a
}

// SetEnabled enables or disables recognition. Frames are still read while
// disabled so the preview stream keeps working.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether recognition is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector replaces the hand detector.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector, or nil.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// OnRecognition registers fn to be called for every accepted letter.
// Callbacks run on the pipeline goroutine and must not block.
func (a *App) OnRecognition(fn func(Recognition)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.callbacks = append(a.callbacks, fn)
}

// Last returns the most recent recognition and whether there has been one.
func (a *App) Last() (Recognition, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last, a.last.Letter.Valid()
}

// DiscoverPlugins scans the plugin directory and loads available plugins.
func (a *App) DiscoverPlugins() error {
	return a.pluginMgr.Discover()
}

// Start opens the camera and runs the pipeline until ctx is done or Stop is
// called.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}
	if a.detector == nil {
		return ErrNoDetector
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(IdleFPS)

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		a.runPipeline(ctx)
	}(a.done)

	a.log.Info("recognition pipeline started")
	return nil
}

// Stop halts the pipeline, waits for it to exit and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	d := a.detector
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	if err := a.camera.Close(); err != nil {
		a.log.WithError(err).Warn("closing camera")
	}
	a.motion.Close()

	if d != nil {
		if err := d.Close(); err != nil {
			a.log.WithError(err).Warn("closing detector")
		}
	}

	a.log.Info("recognition pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Classifier returns the classifier used for live frames.
func (a *App) Classifier() *gesture.Classifier {
	return a.classifier
}

// PluginManager returns the plugin manager.
func (a *App) PluginManager() *plugin.Manager {
	return a.pluginMgr
}
