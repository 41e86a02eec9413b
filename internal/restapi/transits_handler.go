package restapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"starnav.teamgannon.org/internal/logging"
	"starnav.teamgannon.org/internal/models"
	"starnav.teamgannon.org/internal/transit"
	"starnav.teamgannon.org/internal/utils"
)

const recomputeTimeout = 5 * time.Minute

type recomputeRequest struct {
	Bands []transit.Band `json:"bands"`
}

func (api *RestAPI) bandsHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewListResponse(api.Manager.Bands(), false, api.clock()))
}

// recomputeTransitsHandler replaces the transit bands. With async=true the
// work runs in the background and the request returns 202 straight away.
func (api *RestAPI) recomputeTransitsHandler(w http.ResponseWriter, r *http.Request) {
	var req recomputeRequest
	if err := readJSON(w, r, &req); err != nil {
		api.badRequestResponse(w, r, err)
		return
	}
	if len(req.Bands) == 0 {
		api.validationErrorResponse(w, r, utils.FieldErrors{"bands": {"required"}})
		return
	}

	if r.URL.Query().Get("async") == "true" {
		logger := logging.FromContext(r.Context())
		api.runInBackground(recomputeTimeout, func(ctx context.Context) {
			if err := api.Manager.RecomputeTransits(ctx, req.Bands); err != nil {
				logging.LogError(logger, "background transit recompute failed", err,
					slog.Int("bands", len(req.Bands)))
				return
			}
			logging.LogOperation(logger, "background_transit_recompute_complete",
				slog.Int("bands", len(req.Bands)))
		})
		api.sendResponse(w, r, models.NewResponse(http.StatusAccepted, nil, "Accepted", api.clock()))
		return
	}

	if err := api.Manager.RecomputeTransits(r.Context(), req.Bands); err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(api.Manager.Statistics(), api.clock()))
}

func (api *RestAPI) visibleTransitsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := utils.FieldErrors{}
	center := utils.ParsePoint(q, errs)
	radius := utils.ParseRadius(q, models.DefaultSearchRadius, models.MaxSearchRadius, errs)
	if !errs.Empty() {
		api.validationErrorResponse(w, r, errs)
		return
	}

	visible := api.Manager.VisibleTransits(center, radius, q.Get("band"))
	api.sendResponse(w, r, models.NewListResponse(models.NewTransits(visible), false, api.clock()))
}

func (api *RestAPI) nearestTransitHandler(w http.ResponseWriter, r *http.Request) {
	errs := utils.FieldErrors{}
	p := utils.ParsePoint(r.URL.Query(), errs)
	if !errs.Empty() {
		api.validationErrorResponse(w, r, errs)
		return
	}

	nearest, ok := api.Manager.NearestTransit(p)
	if !ok {
		api.notFoundResponse(w, r)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(models.NewTransit(nearest), api.clock()))
}
