package restapi

import (
	"net/http"

	"starnav.teamgannon.org/internal/models"
)

func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	c := api.clock()
	api.sendResponse(w, r, models.NewEntryResponse(models.NewCurrentTimeData(c.Now()), c))
}
