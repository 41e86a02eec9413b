package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"starnav.teamgannon.org/internal/clock"
	"starnav.teamgannon.org/internal/logging"
	"starnav.teamgannon.org/internal/models"
	"starnav.teamgannon.org/internal/routegraph"
	"starnav.teamgannon.org/internal/routing"
	"starnav.teamgannon.org/internal/starmap"
)

const maxBodyBytes = 1 << 20

func (api *RestAPI) clock() clock.Clock {
	if api.Clock == nil {
		return clock.RealClock{}
	}
	return api.Clock
}

func (api *RestAPI) logger() *slog.Logger {
	if api.Logger == nil {
		return slog.Default()
	}
	return api.Logger
}

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	writeJSON(w, r, api.logger(), response.Code, response)
}

func writeJSON(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.LogError(logger, "failed to encode response", err,
			slog.String("path", r.URL.Path),
			slog.String("request_id", requestID(r.Context())))
	}
}

func (api *RestAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, text string, data interface{}) {
	api.sendResponse(w, r, models.NewResponse(status, data, text, api.clock()))
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.logger(), "request failed", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", requestID(r.Context())))
	api.errorResponse(w, r, http.StatusInternalServerError, "internal server error", nil)
}

func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	api.errorResponse(w, r, http.StatusBadRequest, "validation error", map[string]interface{}{"fieldErrors": fieldErrors})
}

func (api *RestAPI) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusBadRequest, err.Error(), nil)
}

func (api *RestAPI) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	api.errorResponse(w, r, http.StatusNotFound, "resource not found", nil)
}

func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.errorResponse(w, r, http.StatusUnauthorized, "permission denied", nil)
}

func (api *RestAPI) unprocessableResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusUnprocessableEntity, err.Error(), nil)
}

// domainErrorResponse maps errors from the starmap, routing and graph
// packages onto HTTP statuses.
func (api *RestAPI) domainErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, routing.ErrInvalidOptions):
		api.badRequestResponse(w, r, err)
	case errors.Is(err, starmap.ErrStarNotFound),
		errors.Is(err, starmap.ErrRouteNotFound),
		errors.Is(err, routegraph.ErrVertexNotFound),
		errors.Is(err, routing.ErrOriginNotFound),
		errors.Is(err, routing.ErrDestinationNotFound):
		api.errorResponse(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, routing.ErrTooManyStars),
		errors.Is(err, routing.ErrNoTransits),
		errors.Is(err, routing.ErrNotConnected),
		errors.Is(err, routing.ErrNoRoutes),
		errors.Is(err, starmap.ErrInvalidBands),
		errors.Is(err, starmap.ErrInvalidRoute):
		api.unprocessableResponse(w, r, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		api.errorResponse(w, r, http.StatusServiceUnavailable, "request cancelled", nil)
	default:
		api.serverErrorResponse(w, r, err)
	}
}

// readJSON decodes a single JSON object from the request body into dst.
func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesErr.Limit)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		default:
			return fmt.Errorf("body contains badly-formed JSON: %w", err)
		}
	}
	if dec.More() {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}
