package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/fingerspell/internal/gesture"
	"github.com/ayusman/fingerspell/internal/logger"
	"github.com/ayusman/fingerspell/internal/plugin"
	"github.com/ayusman/fingerspell/internal/store"
)

// BindingHandler handles HTTP requests for letter bindings.
type BindingHandler struct {
	store   *store.Store
	plugins *plugin.Manager
	log     logrus.FieldLogger
}

// NewBindingHandler creates a new BindingHandler. When plugins is non-nil,
// bindings must name a discovered plugin and one of its actions.
func NewBindingHandler(s *store.Store, plugins *plugin.Manager, log logrus.FieldLogger) *BindingHandler {
	return &BindingHandler{store: s, plugins: plugins, log: logger.OrDiscard(log)}
}

// ServeHTTP routes /api/bindings and /api/bindings/{id}.
func (h *BindingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/bindings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w)
		case http.MethodPost:
			h.create(w, r)
		default:
			methodNotAllowed(w)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, id)
	default:
		methodNotAllowed(w)
	}
}

type createBindingRequest struct {
	Letter     string          `json:"letter" validate:"required"`
	PluginName string          `json:"plugin_name" validate:"required"`
	ActionName string          `json:"action_name" validate:"required"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type updateBindingRequest struct {
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type bindingResponse struct {
	ID         string          `json:"id"`
	Letter     string          `json:"letter"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listBindingsResponse struct {
	Bindings []bindingResponse `json:"bindings"`
}

func toBindingResponse(b *store.Binding) bindingResponse {
	config := b.Config
	if config == nil {
		config = json.RawMessage("{}")
	}
	return bindingResponse{
		ID:         b.ID,
		Letter:     b.Letter,
		PluginName: b.PluginName,
		ActionName: b.ActionName,
		Config:     config,
		Enabled:    b.Enabled,
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
	}
}

// checkPlugin returns a 400 message when the plugin or action is unknown.
func (h *BindingHandler) checkPlugin(name, action string) (string, bool) {
	if h.plugins == nil {
		return "", true
	}
	p, err := h.plugins.Get(name)
	if err != nil {
		return "Plugin not found", false
	}
	if !p.Supports(action) {
		return "Plugin does not support action " + action, false
	}
	return "", true
}

// list handles GET /api/bindings.
func (h *BindingHandler) list(w http.ResponseWriter) {
	bindings, err := h.store.Bindings().List()
	if err != nil {
		h.log.WithError(err).Error("listing bindings")
		WriteError(w, http.StatusInternalServerError, "Failed to list bindings")
		return
	}

	response := listBindingsResponse{Bindings: make([]bindingResponse, 0, len(bindings))}
	for _, b := range bindings {
		response.Bindings = append(response.Bindings, toBindingResponse(b))
	}
	WriteJSON(w, http.StatusOK, response)
}

// get handles GET /api/bindings/{id}.
func (h *BindingHandler) get(w http.ResponseWriter, id string) {
	b, err := h.store.Bindings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Binding not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}
	WriteJSON(w, http.StatusOK, toBindingResponse(b))
}

// create handles POST /api/bindings.
func (h *BindingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBindingRequest
	if msg, ok := decodeBody(w, r, &req); !ok {
		WriteError(w, http.StatusBadRequest, msg)
		return
	}

	letter, err := gesture.ParseLetter(req.Letter)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Letter not found")
		return
	}
	if msg, ok := h.checkPlugin(req.PluginName, req.ActionName); !ok {
		WriteError(w, http.StatusBadRequest, msg)
		return
	}

	b := &store.Binding{
		Letter:     letter.String(),
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    req.Enabled == nil || *req.Enabled,
	}

	switch err := h.store.Bindings().Create(b); {
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, http.StatusBadRequest, "Letter not found")
		return
	case errors.Is(err, store.ErrDuplicate):
		WriteError(w, http.StatusConflict, "Letter already has a binding")
		return
	case err != nil:
		h.log.WithError(err).Error("creating binding")
		WriteError(w, http.StatusInternalServerError, "Failed to create binding")
		return
	}

	WriteJSON(w, http.StatusCreated, toBindingResponse(b))
}

// update handles PUT /api/bindings/{id}. Omitted fields are unchanged.
func (h *BindingHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	b, err := h.store.Bindings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Binding not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}

	var req updateBindingRequest
	if msg, ok := decodeBody(w, r, &req); !ok {
		WriteError(w, http.StatusBadRequest, msg)
		return
	}

	if req.PluginName != "" {
		b.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		b.ActionName = req.ActionName
	}
	if req.Config != nil {
		b.Config = req.Config
	}
	if req.Enabled != nil {
		b.Enabled = *req.Enabled
	}
	if msg, ok := h.checkPlugin(b.PluginName, b.ActionName); !ok {
		WriteError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.store.Bindings().Update(b); err != nil {
		h.log.WithError(err).Error("updating binding")
		WriteError(w, http.StatusInternalServerError, "Failed to update binding")
		return
	}

	WriteJSON(w, http.StatusOK, toBindingResponse(b))
}

// delete handles DELETE /api/bindings/{id}.
func (h *BindingHandler) delete(w http.ResponseWriter, id string) {
	if err := h.store.Bindings().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Binding not found")
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to delete binding")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
