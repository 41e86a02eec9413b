package restapi

import (
	"fmt"
	"net/http"
	"time"
)

// CacheControlMiddleware marks responses cacheable for maxAge. A zero maxAge
// forbids caching.
func CacheControlMiddleware(maxAge time.Duration, next http.Handler) http.Handler {
	value := "no-cache, no-store, must-revalidate"
	if seconds := int(maxAge / time.Second); seconds > 0 {
		value = fmt.Sprintf("public, max-age=%d", seconds)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", value)
		next.ServeHTTP(w, r)
	})
}
