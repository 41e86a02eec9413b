package webui

import (
	"net/http"

	"starnav.teamgannon.org/internal/appconf"
)

func (webUI *WebUI) SetWebUIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /static/{file}", webUI.staticHandler)
	if webUI.Application == nil || webUI.Config.Env != appconf.Production {
		mux.HandleFunc("GET /debug/", webUI.debugIndexHandler)
	}
	mux.HandleFunc("GET /{$}", webUI.indexHandler)
}
