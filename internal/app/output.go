package app

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/fingerspell/internal/plugin"
	"github.com/ayusman/fingerspell/internal/store"
)

// route is the plugin action a letter is sent to.
type route struct {
	plugin string
	action string
	config json.RawMessage
}

// record persists rec as a successful attempt by the guest user.
func (a *App) record(rec Recognition) {
	if a.config.Store == nil {
		return
	}

	userID, err := a.guest()
	if err != nil {
		a.log.WithError(err).Warn("resolving guest user")
	}

	err = a.config.Store.Recognitions().Save(&store.Recognition{
		UserID:     userID,
		Letter:     rec.Letter.String(),
		Success:    true,
		Confidence: rec.Confidence,
		DurationMS: rec.Duration.Milliseconds(),
		CreatedAt:  rec.At,
	})
	if err != nil {
		a.log.WithError(err).WithField("letter", rec.Letter.String()).Warn("saving recognition")
	}
}

func (a *App) guest() (string, error) {
	a.mu.RLock()
	id := a.guestID
	a.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	u, err := a.config.Store.Users().EnsureGuest()
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	a.guestID = u.ID
	a.mu.Unlock()
	return u.ID, nil
}

// routeFor returns the binding for the letter, falling back to the default
// output. ok is false when the letter should not be sent anywhere.
func (a *App) routeFor(letter string) (route, bool) {
	if a.config.Store != nil {
		b, err := a.config.Store.Bindings().GetByLetter(letter)
		if err != nil {
			a.log.WithError(err).WithField("letter", letter).Warn("loading binding")
		}
		if b != nil {
			if !b.Enabled {
				return route{}, false
			}
			return route{plugin: b.PluginName, action: b.ActionName, config: b.Config}, true
		}
	}

	if a.config.OutputPlugin == "" {
		return route{}, false
	}
	return route{plugin: a.config.OutputPlugin, action: a.config.OutputAction}, true
}

// dispatch sends rec to its output plugin. Failures are logged.
func (a *App) dispatch(ctx context.Context, rec Recognition) {
	r, ok := a.routeFor(rec.Letter.String())
	if !ok {
		return
	}

	log := a.log.WithFields(logrus.Fields{
		"letter": rec.Letter.String(),
		"plugin": r.plugin,
		"action": r.action,
	})

	p, err := a.pluginMgr.Get(r.plugin)
	if err != nil {
		log.WithError(err).Warn("output plugin unavailable")
		return
	}
	if !p.Supports(r.action) {
		log.Warn("output plugin does not support action")
		return
	}

	resp, err := a.pluginExec.Execute(ctx, p, &plugin.Request{
		Action:     r.action,
		Letter:     rec.Letter.String(),
		Confidence: rec.Confidence,
		Config:     r.config,
	})
	switch {
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		log.WithError(err).Warn("output plugin failed")
	case !resp.Success:
		log.WithField("error", resp.Error).Warn("output plugin reported failure")
	default:
		log.Debug("output plugin succeeded")
	}
}
