package restapi

import (
	"net/http"

	"starnav.teamgannon.org/internal/geom"
	"starnav.teamgannon.org/internal/models"
	"starnav.teamgannon.org/internal/routing"
	"starnav.teamgannon.org/internal/utils"
)

type addRouteRequest struct {
	Name    string   `json:"name"`
	Color   string   `json:"color"`
	StarIDs []string `json:"starIds"`
}

type findRoutesRequest struct {
	routing.Options
	Save bool `json:"save"`
}

func (api *RestAPI) routesHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewListResponse(models.NewRoutes(api.Manager.Routes()), false, api.clock()))
}

func (api *RestAPI) routeHandler(w http.ResponseWriter, r *http.Request) {
	route, err := api.Manager.Route(routeID(r))
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(models.NewRoute(route), api.clock()))
}

func (api *RestAPI) addRouteHandler(w http.ResponseWriter, r *http.Request) {
	var req addRouteRequest
	if err := readJSON(w, r, &req); err != nil {
		api.badRequestResponse(w, r, err)
		return
	}

	errs := utils.FieldErrors{}
	if len(req.StarIDs) < 2 {
		errs.Add("starIds", "at least two stars are required")
	}
	if len(req.Name) > 200 {
		errs.Add("name", "must be at most 200 characters")
	}
	if !errs.Empty() {
		api.validationErrorResponse(w, r, errs)
		return
	}

	route, err := api.Manager.AddRoute(req.Name, req.Color, req.StarIDs)
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewResponse(http.StatusCreated, models.NewRoute(route), "Created", api.clock()))
}

func (api *RestAPI) removeRouteHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.Manager.RemoveRoute(routeID(r)); err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewOKResponse(nil, api.clock()))
}

func (api *RestAPI) visibleRoutesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := utils.FieldErrors{}
	center := utils.ParsePoint(q, errs)
	radius := utils.ParseRadius(q, models.DefaultSearchRadius, models.MaxSearchRadius, errs)
	if !errs.Empty() {
		api.validationErrorResponse(w, r, errs)
		return
	}

	visible := api.Manager.VisibleRoutes(center, radius)
	api.sendResponse(w, r, models.NewListResponse(models.NewRoutes(visible), false, api.clock()))
}

func (api *RestAPI) nearestRouteHandler(w http.ResponseWriter, r *http.Request) {
	errs := utils.FieldErrors{}
	p := utils.ParsePoint(r.URL.Query(), errs)
	if !errs.Empty() {
		api.validationErrorResponse(w, r, errs)
		return
	}

	route, ok := api.Manager.NearestRoute(p)
	if !ok {
		api.notFoundResponse(w, r)
		return
	}
	api.sendResponse(w, r, models.NewEntryResponse(models.NewRoute(route), api.clock()))
}

func (api *RestAPI) routesInBoxHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	errs := utils.FieldErrors{}
	a := geom.Pt(
		utils.RequireFloatParam(q, "minX", errs),
		utils.RequireFloatParam(q, "minY", errs),
		utils.RequireFloatParam(q, "minZ", errs),
	)
	b := geom.Pt(
		utils.RequireFloatParam(q, "maxX", errs),
		utils.RequireFloatParam(q, "maxY", errs),
		utils.RequireFloatParam(q, "maxZ", errs),
	)
	if !errs.Empty() {
		api.validationErrorResponse(w, r, errs)
		return
	}

	routes := api.Manager.RoutesInBox(geom.NewBox3(a, b))
	api.sendResponse(w, r, models.NewListResponse(models.NewRoutes(routes), false, api.clock()))
}

// findRoutesHandler plans routes between two stars. An omitted numPaths
// falls back to the configured default.
func (api *RestAPI) findRoutesHandler(w http.ResponseWriter, r *http.Request) {
	var req findRoutesRequest
	if err := readJSON(w, r, &req); err != nil {
		api.badRequestResponse(w, r, err)
		return
	}
	if req.NumPaths == 0 {
		req.NumPaths = api.Config.DefaultNumPaths
	}
	if req.NumPaths == 0 {
		req.NumPaths = models.DefaultNumPaths
	}

	found, err := api.Manager.FindRoutes(r.Context(), req.Options, req.Save)
	if err != nil {
		api.domainErrorResponse(w, r, err)
		return
	}

	out := make([]models.FoundRoute, len(found))
	for i, route := range found {
		out[i] = models.NewFoundRoute(route)
	}
	api.sendResponse(w, r, models.NewListResponse(out, false, api.clock()))
}
