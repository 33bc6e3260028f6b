package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/fingerspell/internal/logger"
)

// ErrPluginNotFound is returned by Get for a name no manifest declared.
var ErrPluginNotFound = errors.New("plugin not found")

// ManifestFile is the manifest name looked for in each plugin directory.
const ManifestFile = "plugin.json"

// Manager holds the output plugins installed under one directory, keyed by
// manifest name. Discover swaps in a fresh set, so lookups may run during a
// rescan.
type Manager struct {
	dir string
	log logrus.FieldLogger

	mu     sync.RWMutex
	byName map[string]*Plugin
}

// NewManager creates a Manager over dir. Nothing is loaded until Discover.
func NewManager(dir string, log logrus.FieldLogger) *Manager {
	return &Manager{
		dir:    dir,
		log:    logger.OrDiscard(log),
		byName: map[string]*Plugin{},
	}
}

// Discover loads <dir>/<plugin>/plugin.json for every subdirectory. A
// missing dir means no plugins. Broken manifests are logged and skipped; on
// a name clash the first directory in lexical order wins.
func (m *Manager) Discover() error {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, fs.ErrNotExist) {
		entries, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("scan plugin dir: %w", err)
	}

	found := make(map[string]*Plugin, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		root := filepath.Join(m.dir, e.Name())
		p, err := loadPlugin(root)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			m.log.WithError(err).WithField("dir", root).Warn("skipping plugin")
			continue
		}
		if prev, dup := found[p.Manifest.Name]; dup {
			m.log.WithFields(logrus.Fields{"name": p.Manifest.Name, "kept": prev.Path, "dir": root}).
				Warn("skipping plugin with duplicate name")
			continue
		}
		found[p.Manifest.Name] = p
	}

	m.mu.Lock()
	m.byName = found
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"dir": m.dir, "count": len(found)}).Debug("plugins discovered")
	return nil
}

// loadPlugin reads and checks the manifest in root.
func loadPlugin(root string) (*Plugin, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestFile))
	if err != nil {
		return nil, err
	}

	var mf Manifest
	if err := codec.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	switch {
	case mf.Name == "":
		return nil, errors.New("manifest has no name")
	case mf.Executable == "":
		return nil, errors.New("manifest has no executable")
	}

	return &Plugin{
		Manifest:   mf,
		Path:       root,
		Executable: filepath.Join(root, mf.Executable),
	}, nil
}

// Get returns the plugin declared as name.
func (m *Manager) Get(name string) (*Plugin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, ok := m.byName[name]; ok {
		return p, nil
	}
	return nil, ErrPluginNotFound
}

// List returns the discovered plugins ordered by name.
func (m *Manager) List() []*Plugin {
	m.mu.RLock()
	out := make([]*Plugin, 0, len(m.byName))
	for _, p := range m.byName {
		out = append(out, p)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Plugin) int {
		return strings.Compare(a.Manifest.Name, b.Manifest.Name)
	})
	return out
}

// PluginDir returns the directory Discover scans.
func (m *Manager) PluginDir() string {
	return m.dir
}
