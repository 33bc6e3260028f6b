package server

import (
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/fingerspell/internal/capture"
	"github.com/ayusman/fingerspell/internal/logger"
)

const (
	streamBoundary = "frame"
	// streamInterval paces the preview at roughly 15 FPS.
	streamInterval = 66 * time.Millisecond
)

// StreamHandler serves the camera preview as multipart MJPEG.
type StreamHandler struct {
	camera capture.Camera
	log    logrus.FieldLogger
}

func NewStreamHandler(camera capture.Camera, log logrus.FieldLogger) *StreamHandler {
	return &StreamHandler{camera: camera, log: logger.OrDiscard(log)}
}

// ServeHTTP writes one JPEG part per tick until the client goes away.
// Frames the camera cannot deliver are skipped.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(streamBoundary); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+streamBoundary)
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		jpeg, ok := h.grab()
		if !ok {
			continue
		}

		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":   {"image/jpeg"},
			"Content-Length": {strconv.Itoa(len(jpeg))},
		})
		if err != nil {
			return
		}
		if _, err := part.Write(jpeg); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// grab reads and encodes one frame.
func (h *StreamHandler) grab() ([]byte, bool) {
	frame, err := h.camera.ReadFrame()
	if err != nil {
		return nil, false
	}
	defer frame.Close()

	jpeg, err := capture.EncodeJPEG(frame, capture.DefaultJPEGQuality)
	if err != nil {
		h.log.WithError(err).Debug("encoding preview frame")
		return nil, false
	}
	return jpeg, true
}
