// Package plugin discovers and runs output plugins that act on recognized letters.
//
// A plugin is a directory holding a plugin.json manifest and an executable.
// For every dispatched letter the executable is started once, reads a
// Request from stdin and answers with a Response on stdout.
package plugin

import (
	"encoding/json"
	"slices"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Manifest is the decoded plugin.json.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	// Executable is relative to the plugin directory.
	Executable string   `json:"executable"`
	Actions    []string `json:"actions"`
	// ConfigSchema is a JSON Schema for binding config. It is passed through
	// to clients and never enforced here.
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

type Request struct {
	Action     string  `json:"action"`
	Letter     string  `json:"letter"`
	Confidence float64 `json:"confidence"`
	// Config is the binding's stored config, Params per-call overrides.
	Config json.RawMessage `json:"config,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a loaded manifest together with where it was found.
type Plugin struct {
	Manifest Manifest
	// Path is the plugin directory and Executable the resolved binary.
	Path       string
	Executable string
}

// Supports reports whether the manifest lists action.
func (p *Plugin) Supports(action string) bool {
	return slices.Contains(p.Manifest.Actions, action)
}
