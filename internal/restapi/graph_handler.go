package restapi

import (
	"net/http"
	"strings"

	"starnav.teamgannon.org/internal/models"
	"starnav.teamgannon.org/internal/routing"
	"starnav.teamgannon.org/internal/utils"
)

// starPair reads the required from and to star ids.
func starPair(r *http.Request, errs utils.FieldErrors) (string, string) {
	q := r.URL.Query()
	from, to := strings.TrimSpace(q.Get("from")), strings.TrimSpace(q.Get("to"))
	if from == "" {
		errs.Add("from", "required")
	}
	if to == "" {
		errs.Add("to", "required")
	}
	return from, to
}

func (api *RestAPI) connectedHandler(w http.ResponseWriter, r *http.Request) {
	errs := utils.FieldErrors{}
	from, to := starPair(r, errs)
	if !errs.Empty() {
		api.validationErrorResponse(w, r, errs)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(map[string]interface{}{
		"from":      from,
		"to":        to,
		"connected": api.Manager.IsConnected(from, to),
	}, api.clock()))
}

// edgeWeightHandler looks up to exactly as given. Only from is trimmed, the
// same as the graph lookup.
func (api *RestAPI) edgeWeightHandler(w http.ResponseWriter, r *http.Request) {
	errs := utils.FieldErrors{}
	from, _ := starPair(r, errs)
	to := r.URL.Query().Get("to")
	if !errs.Empty() {
		api.validationErrorResponse(w, r, errs)
		return
	}

	weight, ok := api.Manager.EdgeWeight(from, to)
	if !ok {
		api.notFoundResponse(w, r)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(map[string]interface{}{
		"from":   from,
		"to":     to,
		"weight": weight,
	}, api.clock()))
}

func (api *RestAPI) pathsHandler(w http.ResponseWriter, r *http.Request) {
	errs := utils.FieldErrors{}
	from, to := starPair(r, errs)
	k := utils.ParseIntParam(r.URL.Query(), "k", models.DefaultK, errs)
	if k < 1 || k > routing.MaxPaths {
		errs.Add("k", "must be between 1 and 20")
	}
	if !errs.Empty() {
		api.validationErrorResponse(w, r, errs)
		return
	}

	paths, err := api.Manager.KShortestPaths(from, to, k)
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewListResponse(models.NewPaths(paths), false, api.clock()))
}
