// Package server provides the HTTP server for the practice page and API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/fingerspell/internal/capture"
	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/logger"
	"github.com/ayusman/fingerspell/internal/plugin"
	"github.com/ayusman/fingerspell/internal/server/api"
	"github.com/ayusman/fingerspell/internal/store"
)

// Config holds the server configuration. Only Classifier has a default;
// routes whose dependency is nil are not registered.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Camera     capture.Camera
	Detector   detector.Detector
	Classifier *gesture.Classifier
	Plugins    *plugin.Manager

	// AcceptThreshold is the confidence a letter must exceed to be reported.
	AcceptThreshold float64
	// FrameRate and FrameBurst limit POST /api/frame per client. A zero
	// FrameRate disables the limit.
	FrameRate  float64
	FrameBurst int

	Logger logrus.FieldLogger
}

// Server represents the HTTP server.
type Server struct {
	config Config
	log    logrus.FieldLogger
	mux    *http.ServeMux
	start  time.Time

	landmarks *LandmarksHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.Classifier == nil {
		config.Classifier = gesture.NewClassifier()
	}
	s := &Server{
		config: config,
		log:    logger.OrDiscard(config.Logger).WithField("component", "http"),
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	letters := api.NewLetterHandler(s.config.Store, s.log)
	s.mux.Handle("/api/letters", letters)
	s.mux.Handle("/api/letters/", letters)

	classify := api.NewClassifyHandler(s.config.Classifier, s.config.AcceptThreshold, s.config.Detector, s.log)
	s.mux.HandleFunc("/api/classify", classify.Classify)

	var frame http.Handler = http.HandlerFunc(classify.Frame)
	if s.config.FrameRate > 0 {
		frame = newRateLimiter(s.config.FrameRate, s.config.FrameBurst, s.log).Wrap(frame)
	}
	s.mux.Handle("/api/frame", frame)

	if s.config.Store != nil {
		s.mux.Handle("/api/session", api.NewSessionHandler(s.config.Store, s.log))

		recognitions := api.NewRecognitionHandler(s.config.Store, s.log)
		s.mux.HandleFunc("/api/recognitions", recognitions.Recognitions)
		s.mux.HandleFunc("/api/progress", recognitions.Progress)

		bindings := api.NewBindingHandler(s.config.Store, s.config.Plugins, s.log)
		s.mux.Handle("/api/bindings", bindings)
		s.mux.Handle("/api/bindings/", bindings)
	}

	if s.config.Plugins != nil {
		s.mux.Handle("/api/plugins", api.NewPluginHandler(s.config.Plugins))
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera, s.log))
	}

	if s.config.Camera != nil && s.config.Detector != nil {
		s.landmarks = NewLandmarksHandler(s.config.Detector, s.config.Camera, s.config.Classifier, s.log)
		s.mux.Handle("/api/landmarks", s.landmarks)
	}

	if s.config.StaticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	response := map[string]interface{}{
		"status":   "ok",
		"uptime":   time.Since(s.start).String(),
		"letters":  s.config.Classifier.Table().Len(),
		"detector": s.config.Detector != nil,
		"camera":   s.config.Camera != nil,
	}
	api.WriteJSON(w, http.StatusOK, response)
}

// Close stops background work owned by the handlers. Run calls it on
// shutdown; callers serving s themselves call it when done.
func (s *Server) Close() {
	if s.landmarks != nil {
		s.landmarks.Close()
	}
}

// Run serves on addr until ctx is done, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.log.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
