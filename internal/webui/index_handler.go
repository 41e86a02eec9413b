package webui

import (
	"net/http"

	"starnav.teamgannon.org/internal/starmap"
	"starnav.teamgannon.org/internal/transit"
)

type endpoint struct {
	Method string
	Path   string
	Doc    string
}

var endpoints = []endpoint{
	{"GET", "/api/stars", "List the catalog"},
	{"GET", "/api/stars/{id}", "A single star"},
	{"GET", "/api/stars/nearest", "Stars nearest a point"},
	{"GET", "/api/stars/within", "Stars within a radius"},
	{"GET", "/api/bands", "Transit bands"},
	{"POST", "/api/bands", "Replace the bands and recompute transits"},
	{"GET", "/api/transits/visible", "Transits near a point"},
	{"GET", "/api/transits/nearest", "The transit nearest a point"},
	{"GET", "/api/routes", "Plotted routes"},
	{"POST", "/api/routes", "Plot a route"},
	{"POST", "/api/routes/find", "Search for routes between two stars"},
	{"GET", "/api/graph/paths", "K shortest paths over the transit graph"},
	{"GET", "/api/stats", "Catalog and index statistics"},
}

type indexPage struct {
	Ready     bool
	Env       string
	Stats     starmap.Statistics
	Bands     []transit.Band
	Endpoints []endpoint
}

func (webUI *WebUI) indexHandler(w http.ResponseWriter, r *http.Request) {
	page := indexPage{Endpoints: endpoints}
	if webUI.Application != nil {
		page.Env = webUI.Config.Env.String()
		if webUI.Manager != nil {
			page.Ready = true
			page.Stats = webUI.Manager.Statistics()
			page.Bands = webUI.Manager.Bands()
		}
	}
	webUI.render(w, r, "index.html", page)
}
