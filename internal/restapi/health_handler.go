package restapi

import (
	"net/http"
)

type healthResponse struct {
	Status string `json:"status"`
	Stars  int    `json:"stars"`
}

// healthHandler reports whether a star catalog is loaded. It needs no API key.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	if api.Manager == nil {
		writeJSON(w, r, api.logger(), http.StatusServiceUnavailable, healthResponse{Status: "starting"})
		return
	}
	writeJSON(w, r, api.logger(), http.StatusOK, healthResponse{
		Status: "ok",
		Stars:  api.Manager.Statistics().Stars,
	})
}
