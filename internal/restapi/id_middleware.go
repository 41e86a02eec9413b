package restapi

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"starnav.teamgannon.org/internal/utils"
)

const maxStarIDLength = 100

// ValidateStarIDMiddleware rejects star ids that are empty, too long or
// contain control characters.
func (api *RestAPI) ValidateStarIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		errs := utils.FieldErrors{}
		switch {
		case strings.TrimSpace(id) == "":
			errs.Add("id", "required")
		case len(id) > maxStarIDLength:
			errs.Add("id", "too long")
		case strings.IndexFunc(id, unicode.IsControl) >= 0:
			errs.Add("id", "contains invalid characters")
		}
		if !errs.Empty() {
			api.validationErrorResponse(w, r, errs)
			return
		}
		next(w, r)
	}
}

// ValidateRouteIDMiddleware rejects route ids that are not uuids.
func (api *RestAPI) ValidateRouteIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := uuid.Parse(r.PathValue("id")); err != nil {
			api.validationErrorResponse(w, r, utils.FieldErrors{"id": {"must be a uuid"}})
			return
		}
		next(w, r)
	}
}

func routeID(r *http.Request) uuid.UUID {
	return uuid.MustParse(r.PathValue("id"))
}
