// Package app holds the dependencies shared by the HTTP handlers.
package app

import (
	"log/slog"
	"net/http"
	"slices"

	"starnav.teamgannon.org/internal/appconf"
	"starnav.teamgannon.org/internal/clock"
	"starnav.teamgannon.org/internal/starmap"
)

type Application struct {
	Config        appconf.Config
	StarmapConfig starmap.Config
	Logger        *slog.Logger
	Manager       *starmap.Manager
	Clock         clock.Clock
}

// IsInvalidAPIKey reports whether key is empty or not one of the configured keys.
func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}
	return !slices.Contains(app.Config.ApiKeys, key)
}

// RequestHasInvalidAPIKey checks the key query parameter of r.
func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	return app.IsInvalidAPIKey(r.URL.Query().Get("key"))
}
