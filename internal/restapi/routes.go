package restapi

import (
	"net/http"
	"net/http/pprof"
	"time"

	"starnav.teamgannon.org/internal/appconf"
	"starnav.teamgannon.org/internal/metrics"
)

// rateLimitAndValidateAPIKey checks the API key, then applies the rate limit
// and compression to handler.
func rateLimitAndValidateAPIKey(api *RestAPI, handler http.HandlerFunc) http.Handler {
	compressed := CompressionMiddleware(handler)

	limited := compressed
	if api.rateLimiter != nil {
		limited = api.rateLimiter.Handler()(compressed)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.invalidAPIKeyResponse(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

// withStarID validates the {id} path value as a star id.
func withStarID(api *RestAPI, handler http.HandlerFunc) http.Handler {
	return rateLimitAndValidateAPIKey(api, api.ValidateStarIDMiddleware(handler))
}

// withRouteID validates the {id} path value as a route uuid.
func withRouteID(api *RestAPI, handler http.HandlerFunc) http.Handler {
	return rateLimitAndValidateAPIKey(api, api.ValidateRouteIDMiddleware(handler))
}

func registerPprofHandlers(mux *http.ServeMux) {
	// Methods are explicit so the patterns sit under the web UI's GET /debug/
	// on a shared mux.
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("POST /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
}

// SetRoutes registers all API endpoints with compression applied per route
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", api.healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	if api.Config.Env == appconf.Development {
		registerPprofHandlers(mux)
	}

	mux.Handle("GET /api/current-time", rateLimitAndValidateAPIKey(api, api.currentTimeHandler))
	mux.Handle("GET /api/stats", rateLimitAndValidateAPIKey(api, api.statsHandler))

	mux.Handle("GET /api/stars", CacheControlMiddleware(time.Minute, rateLimitAndValidateAPIKey(api, api.starsHandler)))
	mux.Handle("GET /api/stars/nearest", rateLimitAndValidateAPIKey(api, api.nearestStarsHandler))
	mux.Handle("GET /api/stars/within", rateLimitAndValidateAPIKey(api, api.starsWithinHandler))
	mux.Handle("GET /api/stars/{id}", CacheControlMiddleware(time.Minute, withStarID(api, api.starHandler)))

	mux.Handle("GET /api/bands", rateLimitAndValidateAPIKey(api, api.bandsHandler))
	mux.Handle("POST /api/bands", rateLimitAndValidateAPIKey(api, api.recomputeTransitsHandler))
	mux.Handle("GET /api/transits/visible", rateLimitAndValidateAPIKey(api, api.visibleTransitsHandler))
	mux.Handle("GET /api/transits/nearest", rateLimitAndValidateAPIKey(api, api.nearestTransitHandler))

	mux.Handle("GET /api/routes", rateLimitAndValidateAPIKey(api, api.routesHandler))
	mux.Handle("POST /api/routes", rateLimitAndValidateAPIKey(api, api.addRouteHandler))
	mux.Handle("GET /api/routes/visible", rateLimitAndValidateAPIKey(api, api.visibleRoutesHandler))
	mux.Handle("GET /api/routes/nearest", rateLimitAndValidateAPIKey(api, api.nearestRouteHandler))
	mux.Handle("GET /api/routes/box", rateLimitAndValidateAPIKey(api, api.routesInBoxHandler))
	mux.Handle("POST /api/routes/find", rateLimitAndValidateAPIKey(api, api.findRoutesHandler))
	mux.Handle("GET /api/routes/{id}", withRouteID(api, api.routeHandler))
	mux.Handle("DELETE /api/routes/{id}", withRouteID(api, api.removeRouteHandler))

	mux.Handle("GET /api/graph/connected", rateLimitAndValidateAPIKey(api, api.connectedHandler))
	mux.Handle("GET /api/graph/edge-weight", rateLimitAndValidateAPIKey(api, api.edgeWeightHandler))
	mux.Handle("GET /api/graph/paths", rateLimitAndValidateAPIKey(api, api.pathsHandler))

	// Anything else under /api/ gets the JSON envelope instead of the mux's
	// plain text 404.
	mux.HandleFunc("/api/", api.notFoundResponse)
}

// SetupAPIRoutes returns the API routes behind the request id, logging and
// security middlewares.
func (api *RestAPI) SetupAPIRoutes() http.Handler {
	mux := http.NewServeMux()
	api.SetRoutes(mux)
	return api.WrapHandler(mux)
}

// WrapHandler applies the server-wide middlewares to a mux. The request id is
// outermost so the request log line carries it.
func (api *RestAPI) WrapHandler(mux *http.ServeMux) http.Handler {
	handler := api.WithSecurityHeaders(mux)
	handler = NewRequestLoggingMiddleware(api.logger())(handler)
	return RequestIDMiddleware(handler)
}
