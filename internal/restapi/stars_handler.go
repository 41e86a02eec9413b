package restapi

import (
	"net/http"

	"starnav.teamgannon.org/internal/models"
	"starnav.teamgannon.org/internal/utils"
)

// starsHandler lists the catalog, truncated to maxCount.
func (api *RestAPI) starsHandler(w http.ResponseWriter, r *http.Request) {
	errs := utils.FieldErrors{}
	maxCount := utils.ParseIntParam(r.URL.Query(), "maxCount", 0, errs)
	if maxCount < 0 {
		errs.Add("maxCount", "must not be negative")
	}
	if !errs.Empty() {
		api.validationErrorResponse(w, r, errs)
		return
	}

	stars := api.Manager.Stars()
	limitExceeded := false
	if maxCount > 0 && len(stars) > maxCount {
		stars = stars[:maxCount]
		limitExceeded = true
	}
	api.sendResponse(w, r, models.NewListResponse(stars, limitExceeded, api.clock()))
}

func (api *RestAPI) starHandler(w http.ResponseWriter, r *http.Request) {
	star, err := api.Manager.Star(r.PathValue("id"))
	if err != nil {
		api.notFoundResponse(w, r)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(star, api.clock()))
}

func (api *RestAPI) nearestStarsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := utils.FieldErrors{}
	p := utils.ParsePoint(q, errs)
	count := utils.ParseIntParam(q, "count", models.DefaultNearestCount, errs)
	if count < 1 || count > models.MaxNearestCount {
		errs.Add("count", "must be between 1 and 250")
	}
	if !errs.Empty() {
		api.validationErrorResponse(w, r, errs)
		return
	}

	api.sendResponse(w, r, models.NewListResponse(api.Manager.NearestStars(p, count), false, api.clock()))
}

func (api *RestAPI) starsWithinHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := utils.FieldErrors{}
	p := utils.ParsePoint(q, errs)
	radius := utils.ParseRadius(q, models.DefaultSearchRadius, models.MaxSearchRadius, errs)
	if !errs.Empty() {
		api.validationErrorResponse(w, r, errs)
		return
	}

	api.sendResponse(w, r, models.NewListResponse(api.Manager.StarsWithinRadius(p, radius), false, api.clock()))
}
