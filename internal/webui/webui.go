// Package webui serves the HTML landing and debug pages.
package webui

import (
	"embed"
	"html/template"
	"log/slog"

	"starnav.teamgannon.org/internal/app"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"percent": formatPercent,
}).ParseFS(templateFS, "templates/*.html"))

type WebUI struct {
	*app.Application
}

func (webUI *WebUI) logger() *slog.Logger {
	if webUI.Application == nil || webUI.Logger == nil {
		return slog.Default()
	}
	return webUI.Logger
}
