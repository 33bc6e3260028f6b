package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/fingerspell/internal/gesture"
)

// runPipeline reads frames on a ticker. Motion switches the ticker between
// IdleFPS and ActiveFPS; only active frames are sent to the detector.
func (a *App) runPipeline(ctx context.Context) {
	activeMode := false
	lastMotion := time.Now()

	ticker := time.NewTicker(time.Second / IdleFPS)
	defer ticker.Stop()

	setMode := func(active bool) {
		activeMode = active
		fps := IdleFPS
		if active {
			fps = ActiveFPS
		}
		a.camera.SetFPS(fps)
		ticker.Reset(time.Second / time.Duration(fps))
		a.log.WithField("fps", fps).Debug("pipeline mode changed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.log.WithError(err).Debug("reading frame")
				continue
			}

			if moved, _ := a.motion.Detect(frame); moved {
				lastMotion = now
				if !activeMode {
					setMode(true)
				}
			} else if activeMode && now.Sub(lastMotion) > IdleTimeout {
				setMode(false)
				a.gate.reset()
			}

			if activeMode && a.IsEnabled() {
				a.processFrame(ctx, frame, now)
			}
			frame.Close()
		}
	}
}

// processFrame detects a hand in frame, classifies it and emits the letter
// if it passes the gate.
func (a *App) processFrame(ctx context.Context, frame *gocv.Mat, now time.Time) {
	d := a.Detector()
	if d == nil {
		return
	}

	hands, err := d.Detect(frame)
	if err != nil {
		a.log.WithError(err).Warn("detecting hand")
		return
	}

	if len(hands) == 0 {
		a.gate.observe(gesture.Result{}, false, now)
		return
	}

	result := a.classifier.ClassifyHand(&hands[0])
	if rec, ok := a.gate.observe(result, true, now); ok {
		a.emit(ctx, rec)
	}
}

// emit records rec, notifies callbacks and dispatches it to the output plugin.
func (a *App) emit(ctx context.Context, rec Recognition) {
	a.mu.Lock()
	a.last = rec
	callbacks := append([]func(Recognition)(nil), a.callbacks...)
	a.mu.Unlock()

	a.log.WithFields(logrus.Fields{
		"letter":     rec.Letter.String(),
		"confidence": rec.Confidence,
		"duration":   rec.Duration,
	}).Info("letter recognized")

	a.record(rec)

	for _, fn := range callbacks {
		fn(rec)
	}

	a.dispatch(ctx, rec)
}

// gate applies the consumer acceptance threshold and suppresses repeats of
// the same letter within the repeat interval. It also tracks how long the
// hand has been in view.
type gate struct {
	accept float64
	repeat time.Duration

	last      gesture.Letter
	lastAt    time.Time
	handSince time.Time
}

func newGate(accept float64, repeat time.Duration) *gate {
	return &gate{accept: accept, repeat: repeat}
}

// observe feeds one frame's result into the gate. handPresent is false when
// the detector saw no hand.
func (g *gate) observe(res gesture.Result, handPresent bool, now time.Time) (Recognition, bool) {
	if !handPresent {
		g.handSince = time.Time{}
		return Recognition{}, false
	}
	if g.handSince.IsZero() {
		g.handSince = now
	}

	if !res.Accepted(g.accept) {
		return Recognition{}, false
	}
	if res.Letter == g.last && now.Sub(g.lastAt) < g.repeat {
		return Recognition{}, false
	}

	rec := Recognition{
		Letter:     res.Letter,
		Confidence: res.Confidence,
		Duration:   now.Sub(g.handSince),
		At:         now,
	}
	g.last = res.Letter
	g.lastAt = now
	g.handSince = now

	return rec, true
}

func (g *gate) reset() {
	g.last = gesture.None
	g.lastAt = time.Time{}
	g.handSince = time.Time{}
}
