package restapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"starnav.teamgannon.org/internal/logging"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

const maxRequestIDLength = 128

// RequestIDMiddleware tags each request with an id, reusing a sane
// X-Request-ID from the client. The id is echoed in the response and attached
// to the request logger.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" || len(reqID) > maxRequestIDLength {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), RequestIDKey, reqID)
		ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With(slog.String("request_id", reqID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
