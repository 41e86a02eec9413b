package restapi

import (
	"net/http"

	"starnav.teamgannon.org/internal/models"
)

func (api *RestAPI) statsHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewEntryResponse(api.Manager.Statistics(), api.clock()))
}
