package webui

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"starnav.teamgannon.org/internal/logging"
)

func formatPercent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 1, 64) + "%"
}

// render executes the named template into a buffer first so a template error
// never leaves a half-written page.
func (webUI *WebUI) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		logging.LogError(webUI.logger(), "failed to render page", err,
			slog.String("template", name),
			slog.String("path", r.URL.Path))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_, _ = buf.WriteTo(w)
}
