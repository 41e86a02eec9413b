package starmap

import (
	"time"

	"starnav.teamgannon.org/internal/routing"
	"starnav.teamgannon.org/internal/transit"
)

// Config configures a Manager.
type Config struct {
	CatalogPath string
	Bands       []transit.Band
	Finder      routing.Config
	// ParallelThreshold is the star count from which transit calculation runs on
	// several workers. Zero keeps the calculator default.
	ParallelThreshold int
	// ReloadInterval is how often the catalog file is checked for changes.
	// Zero disables reloading.
	ReloadInterval time.Duration
	Verbose        bool
}

// DefaultBands are used when the configuration defines none.
func DefaultBands() []transit.Band {
	return []transit.Band{
		{ID: "short", Name: "Short jump", Lower: 0, Upper: 5, Enabled: true, Color: "#4fc3f7", LineWidth: 1},
		{ID: "medium", Name: "Medium jump", Lower: 5, Upper: 8, Enabled: true, Color: "#ffb74d", LineWidth: 1},
		{ID: "long", Name: "Long jump", Lower: 8, Upper: 12, Enabled: false, Color: "#e57373", LineWidth: 0.5},
	}
}
