// Package tray shows the live recognizer in the system tray.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

const (
	titleEnabled  = "● Recognizing"
	titleDisabled = "○ Paused"
	lastNone      = "Last: none"
)

// menu holds the items that change after startup. Nil until the tray is ready.
type menu struct {
	toggle *systray.MenuItem
	last   *systray.MenuItem
}

// Tray owns the recognizer's tray icon. State changes made before Run are
// applied when the menu is built.
type Tray struct {
	mu      sync.RWMutex
	enabled bool
	last    string
	menu    *menu

	onToggle   func(enabled bool)
	onPractice func()
	onQuit     func()
}

// New returns a Tray with recognition enabled.
func New() *Tray {
	return &Tray{enabled: true, last: lastNone}
}

func (t *Tray) OnToggle(fn func(enabled bool)) { t.set(func() { t.onToggle = fn }) }

// OnPractice runs when "Open Practice..." is clicked.
func (t *Tray) OnPractice(fn func()) { t.set(func() { t.onPractice = fn }) }

// OnQuit runs when "Quit" is clicked, before the tray exits.
func (t *Tray) OnQuit(fn func()) { t.set(func() { t.onQuit = fn }) }

func (t *Tray) set(fn func()) {
	t.mu.Lock()
	fn()
	t.mu.Unlock()
}

// Run builds the menu and blocks until Quit. It must be called from the
// main goroutine on macOS.
func (t *Tray) Run() {
	systray.Run(t.build, func() {})
}

func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) build() {
	systray.SetTitle("ASL")
	systray.SetTooltip("Fingerspelling recognizer")

	t.mu.Lock()
	m := &menu{toggle: systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume recognition")}
	systray.AddSeparator()
	m.last = systray.AddMenuItem(t.last, "Last recognized letter")
	m.last.Disable()
	t.menu = m
	t.mu.Unlock()

	systray.AddSeparator()
	practice := systray.AddMenuItem("Open Practice...", "Open the practice page in a browser")
	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Quit fingerspell")

	go t.loop(m.toggle.ClickedCh, practice.ClickedCh, quit.ClickedCh)
}

func (t *Tray) loop(toggle, practice, quit <-chan struct{}) {
	for {
		select {
		case <-toggle:
			t.toggle()
		case <-practice:
			t.call(func() func() { return t.onPractice })
		case <-quit:
			t.call(func() func() { return t.onQuit })
			systray.Quit()
			return
		}
	}
}

// call runs the callback chosen by pick outside the lock.
func (t *Tray) call(pick func() func()) {
	t.mu.RLock()
	fn := pick()
	t.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (t *Tray) toggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled, cb := t.enabled, t.onToggle
	if t.menu != nil {
		t.menu.toggle.SetTitle(toggleTitle(enabled))
	}
	t.mu.Unlock()

	if cb != nil {
		cb(enabled)
	}
}

// SetLast shows the last accepted letter. An empty letter clears it.
func (t *Tray) SetLast(letter string, confidence float64) {
	title := LastTitle(letter, confidence)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = title
	if t.menu != nil {
		t.menu.last.SetTitle(title)
	}
}

func (t *Tray) Last() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// LastTitle formats the last-recognition menu title.
func LastTitle(letter string, confidence float64) string {
	if letter == "" {
		return lastNone
	}
	return fmt.Sprintf("Last: %s (%.2f)", letter, confidence)
}

func toggleTitle(enabled bool) string {
	if enabled {
		return titleEnabled
	}
	return titleDisabled
}
