package api

import (
	"net/http"

	"github.com/ayusman/fingerspell/internal/plugin"
)

// PluginHandler lists discovered output plugins.
type PluginHandler struct {
	plugins *plugin.Manager
}

// NewPluginHandler creates a new PluginHandler.
func NewPluginHandler(m *plugin.Manager) *PluginHandler {
	return &PluginHandler{plugins: m}
}

type pluginResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

type listPluginsResponse struct {
	Plugins []pluginResponse `json:"plugins"`
}

// ServeHTTP handles GET /api/plugins. POST rescans the plugin directory first.
func (h *PluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if err := h.plugins.Discover(); err != nil {
			WriteError(w, http.StatusInternalServerError, "Failed to scan plugins")
			return
		}
	default:
		methodNotAllowed(w)
		return
	}

	list := h.plugins.List()
	resp := listPluginsResponse{Plugins: make([]pluginResponse, 0, len(list))}
	for _, p := range list {
		actions := p.Manifest.Actions
		if actions == nil {
			actions = []string{}
		}
		resp.Plugins = append(resp.Plugins, pluginResponse{
			Name:        p.Manifest.Name,
			Version:     p.Manifest.Version,
			Description: p.Manifest.Description,
			Actions:     actions,
		})
	}
	WriteJSON(w, http.StatusOK, resp)
}
