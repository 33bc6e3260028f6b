package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/logger"
	"github.com/ayusman/fingerspell/internal/store"
)

// defaultHistoryLimit caps GET /api/recognitions when no limit is given.
const defaultHistoryLimit = 50

// RecognitionHandler records practice attempts and serves progress.
type RecognitionHandler struct {
	store *store.Store
	log   logrus.FieldLogger
}

// NewRecognitionHandler creates a new RecognitionHandler.
func NewRecognitionHandler(s *store.Store, log logrus.FieldLogger) *RecognitionHandler {
	return &RecognitionHandler{store: s, log: logger.OrDiscard(log)}
}

type saveRecognitionRequest struct {
	GestureName string  `json:"gesture_name" validate:"required,len=1,alpha"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=1"`
	DurationMS  int64   `json:"duration_ms" validate:"gte=0"`
	// Success defaults to true when omitted.
	Success *bool `json:"success"`
}

func (r saveRecognitionRequest) succeeded() bool {
	return r.Success == nil || *r.Success
}

type recognitionResponse struct {
	ID          string  `json:"id"`
	GestureName string  `json:"gesture_name"`
	Success     bool    `json:"success"`
	Confidence  float64 `json:"confidence"`
	DurationMS  int64   `json:"duration_ms"`
	CreatedAt   string  `json:"created_at"`
}

type listRecognitionsResponse struct {
	Recognitions []recognitionResponse `json:"recognitions"`
}

type progressResponse struct {
	Letter         string `json:"letter"`
	Description    string `json:"description"`
	Proficiency    int    `json:"proficiency"`
	TimesPracticed int    `json:"times_practiced"`
	LastPracticed  string `json:"last_practiced"`
}

type listProgressResponse struct {
	UserID   string             `json:"user_id"`
	Progress []progressResponse `json:"progress"`
}

func toRecognitionResponse(rec *store.Recognition) recognitionResponse {
	return recognitionResponse{
		ID:          rec.ID,
		GestureName: rec.Letter,
		Success:     rec.Success,
		Confidence:  rec.Confidence,
		DurationMS:  rec.DurationMS,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

// Recognitions handles /api/recognitions: POST records an attempt, GET lists
// the current user's history.
func (h *RecognitionHandler) Recognitions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.save(w, r)
	case http.MethodGet:
		h.history(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *RecognitionHandler) save(w http.ResponseWriter, r *http.Request) {
	var req saveRecognitionRequest
	if msg, ok := decodeBody(w, r, &req); !ok {
		WriteError(w, http.StatusBadRequest, msg)
		return
	}

	letter, err := gesture.ParseLetter(req.GestureName)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Letter not found")
		return
	}

	user, err := resolveUser(h.store, r)
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, http.StatusUnauthorized, "Unknown user")
		return
	case err != nil:
		h.log.WithError(err).Error("resolving user")
		WriteError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	rec := &store.Recognition{
		Letter:     letter.String(),
		Success:    req.succeeded(),
		Confidence: req.Confidence,
		DurationMS: req.DurationMS,
	}
	if user != nil {
		rec.UserID = user.ID
	}

	if err := h.store.Recognitions().Save(rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Letter not found")
			return
		}
		h.log.WithError(err).Error("saving recognition")
		WriteError(w, http.StatusInternalServerError, "Failed to save recognition")
		return
	}

	WriteJSON(w, http.StatusCreated, toRecognitionResponse(rec))
}

func (h *RecognitionHandler) history(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	recs, err := h.store.Recognitions().ListByUser(user.ID, limit)
	if err != nil {
		h.log.WithError(err).Error("listing recognitions")
		WriteError(w, http.StatusInternalServerError, "Failed to list recognitions")
		return
	}

	resp := listRecognitionsResponse{Recognitions: make([]recognitionResponse, 0, len(recs))}
	for _, rec := range recs {
		resp.Recognitions = append(resp.Recognitions, toRecognitionResponse(rec))
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Progress handles GET /api/progress for the current user.
func (h *RecognitionHandler) Progress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	list, err := h.store.Progress().ListByUser(user.ID)
	if err != nil {
		h.log.WithError(err).Error("listing progress")
		WriteError(w, http.StatusInternalServerError, "Failed to list progress")
		return
	}

	resp := listProgressResponse{UserID: user.ID, Progress: make([]progressResponse, 0, len(list))}
	for _, p := range list {
		resp.Progress = append(resp.Progress, progressResponse{
			Letter:         p.Letter,
			Description:    p.Description,
			Proficiency:    p.Proficiency,
			TimesPracticed: p.TimesPracticed,
			LastPracticed:  p.LastPracticed.Format(time.RFC3339),
		})
	}
	WriteJSON(w, http.StatusOK, resp)
}

// requireUser writes 401 unless r names a known user.
func (h *RecognitionHandler) requireUser(w http.ResponseWriter, r *http.Request) (*store.User, bool) {
	user, err := resolveUser(h.store, r)
	switch {
	case err == nil && user != nil:
		return user, true
	case err == nil, errors.Is(err, store.ErrNotFound):
		WriteError(w, http.StatusUnauthorized, "No user logged in")
	default:
		h.log.WithError(err).Error("resolving user")
		WriteError(w, http.StatusInternalServerError, "Failed to load user")
	}
	return nil, false
}
