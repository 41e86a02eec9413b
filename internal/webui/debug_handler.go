package webui

import (
	"net/http"
	"runtime"
	"time"

	"starnav.teamgannon.org/internal/starmap"
)

type debugPage struct {
	Stats      starmap.Statistics
	Routes     []starmap.SavedRoute
	Goroutines int
	HeapMB     float64
	Uptime     time.Duration
	Now        time.Time
}

var startedAt = time.Now()

// debugIndexHandler shows index, cache and runtime statistics. It is only
// registered outside production.
func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Application == nil || webUI.Manager == nil {
		http.Error(w, "star map not loaded", http.StatusServiceUnavailable)
		return
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	now := time.Now()
	if webUI.Clock != nil {
		now = webUI.Clock.Now()
	}

	webUI.render(w, r, "debug.html", debugPage{
		Stats:      webUI.Manager.Statistics(),
		Routes:     webUI.Manager.Routes(),
		Goroutines: runtime.NumGoroutine(),
		HeapMB:     float64(mem.HeapAlloc) / (1 << 20),
		Uptime:     time.Since(startedAt).Round(time.Second),
		Now:        now,
	})
}
