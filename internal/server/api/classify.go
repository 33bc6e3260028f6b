package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/fingerspell/internal/capture"
	"github.com/ayusman/fingerspell/internal/detector"
	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/logger"
)

// classifyResponse is shared by /api/classify and /api/frame. Gesture is set
// only when the classifier accepted a letter and its confidence clears the
// accept threshold.
type classifyResponse struct {
	HandDetected    bool                `json:"hand_detected"`
	GestureDetected bool                `json:"gesture_detected"`
	Gesture         string              `json:"gesture,omitempty"`
	Confidence      float64             `json:"confidence"`
	Candidates      []gesture.Candidate `json:"candidates"`
	Landmarks       []detector.Point3D  `json:"landmarks,omitempty"`
}

type classifyRequest struct {
	Landmarks []detector.WirePoint `json:"landmarks"`
}

type frameRequest struct {
	Image string `json:"image" validate:"required"`
}

// ClassifyHandler classifies posted landmarks and camera frames.
type ClassifyHandler struct {
	classifier *gesture.Classifier
	accept     float64
	detector   detector.Detector
	log        logrus.FieldLogger
}

// NewClassifyHandler creates a ClassifyHandler. d may be nil, in which case
// frames are refused with 503.
func NewClassifyHandler(c *gesture.Classifier, accept float64, d detector.Detector, log logrus.FieldLogger) *ClassifyHandler {
	if c == nil {
		c = gesture.NewClassifier()
	}
	return &ClassifyHandler{
		classifier: c,
		accept:     accept,
		detector:   d,
		log:        logger.OrDiscard(log),
	}
}

// respond classifies points. Incomplete landmarks yield an empty result, not an error.
func (h *ClassifyHandler) respond(points []detector.Point3D) classifyResponse {
	resp := classifyResponse{
		HandDetected: len(points) > 0,
		Candidates:   []gesture.Candidate{},
	}
	if len(points) == 0 {
		return resp
	}

	result := h.classifier.Classify(points)
	if c := h.classifier.Candidates(points); c != nil {
		resp.Candidates = c
	}

	if result.Accepted(h.accept) {
		resp.GestureDetected = true
		resp.Gesture = result.Letter.String()
		resp.Confidence = result.Confidence
	}
	return resp
}

// Classify handles POST /api/classify.
func (h *ClassifyHandler) Classify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req classifyRequest
	if msg, ok := decodeBody(w, r, &req); !ok {
		WriteError(w, http.StatusBadRequest, msg)
		return
	}

	points, err := detector.ToPoints(req.Landmarks)
	if err != nil {
		resp := h.respond(nil)
		resp.HandDetected = len(req.Landmarks) > 0
		WriteJSON(w, http.StatusOK, resp)
		return
	}

	WriteJSON(w, http.StatusOK, h.respond(points))
}

// Frame handles POST /api/frame: decode the image, find a hand and classify it.
func (h *ClassifyHandler) Frame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if h.detector == nil {
		WriteError(w, http.StatusServiceUnavailable, "Hand detector not available")
		return
	}

	var req frameRequest
	if msg, ok := decodeBody(w, r, &req); !ok {
		WriteError(w, http.StatusBadRequest, msg)
		return
	}

	data, err := decodeDataURL(req.Image)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid image encoding")
		return
	}

	frame, err := capture.DecodeImage(data)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Image could not be decoded")
		return
	}
	defer frame.Close()

	hands, err := h.detector.Detect(frame)
	if err != nil {
		h.log.WithError(err).Error("detecting hand in uploaded frame")
		WriteError(w, http.StatusInternalServerError, "Hand detection failed")
		return
	}
	if len(hands) == 0 {
		WriteJSON(w, http.StatusOK, h.respond(nil))
		return
	}

	points := hands[0].Slice()
	resp := h.respond(points)
	resp.Landmarks = points
	WriteJSON(w, http.StatusOK, resp)
}

var errEmptyImage = errors.New("empty image")

// decodeDataURL accepts either a data URL or bare base64.
func decodeDataURL(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return nil, errEmptyImage
		}
		s = s[i+1:]
	}
	if s == "" {
		return nil, errEmptyImage
	}
	return base64.StdEncoding.DecodeString(s)
}
