package api

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/logger"
	"github.com/ayusman/fingerspell/internal/store"
)

// LetterHandler serves the letter catalogue. Without a store, or while the
// store is empty, the built-in alphabet is served instead.
type LetterHandler struct {
	store *store.Store
	log   logrus.FieldLogger
}

// NewLetterHandler creates a new LetterHandler. s may be nil.
func NewLetterHandler(s *store.Store, log logrus.FieldLogger) *LetterHandler {
	return &LetterHandler{store: s, log: logger.OrDiscard(log)}
}

type letterResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Difficulty  int    `json:"difficulty"`
}

type listLettersResponse struct {
	Letters []letterResponse `json:"letters"`
}

type syncLettersResponse struct {
	Inserted int `json:"inserted"`
	Total    int `json:"total"`
}

// ServeHTTP routes /api/letters, /api/letters/sync and /api/letters/{name}.
func (h *LetterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/letters")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.list(w)
	case path == "sync":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.sync(w)
	default:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.get(w, path)
	}
}

func (h *LetterHandler) catalogue() []letterResponse {
	if h.store != nil {
		letters, err := h.store.Letters().List()
		if err != nil {
			h.log.WithError(err).Warn("listing letters, serving built-in alphabet")
		} else if len(letters) > 0 {
			out := make([]letterResponse, 0, len(letters))
			for _, l := range letters {
				out = append(out, letterResponse{Name: l.Name, Description: l.Description, Difficulty: l.Difficulty})
			}
			return out
		}
	}

	signs := gesture.Alphabet.Signs()
	out := make([]letterResponse, 0, len(signs))
	for _, s := range signs {
		out = append(out, letterResponse{Name: s.Letter.String(), Description: s.Description, Difficulty: s.Difficulty})
	}
	return out
}

// list handles GET /api/letters.
func (h *LetterHandler) list(w http.ResponseWriter) {
	WriteJSON(w, http.StatusOK, listLettersResponse{Letters: h.catalogue()})
}

// get handles GET /api/letters/{name}. Names are case-insensitive.
func (h *LetterHandler) get(w http.ResponseWriter, name string) {
	l, err := gesture.ParseLetter(name)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Letter not found")
		return
	}

	for _, lr := range h.catalogue() {
		if lr.Name == l.String() {
			WriteJSON(w, http.StatusOK, lr)
			return
		}
	}
	WriteError(w, http.StatusNotFound, "Letter not found")
}

// sync handles POST /api/letters/sync, inserting any missing letters.
func (h *LetterHandler) sync(w http.ResponseWriter) {
	if h.store == nil {
		WriteError(w, http.StatusServiceUnavailable, "Database not configured")
		return
	}

	inserted, err := h.store.Letters().SeedAlphabet()
	if err != nil {
		h.log.WithError(err).Error("syncing letters")
		WriteError(w, http.StatusInternalServerError, "Failed to sync letters")
		return
	}
	total, err := h.store.Letters().Count()
	if err != nil {
		h.log.WithError(err).Error("counting letters")
		WriteError(w, http.StatusInternalServerError, "Failed to count letters")
		return
	}

	h.log.WithFields(logrus.Fields{"inserted": inserted, "total": total}).Info("letters synced")
	WriteJSON(w, http.StatusOK, syncLettersResponse{Inserted: inserted, Total: total})
}
