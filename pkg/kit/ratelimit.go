package kit

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit caps requests per client IP within a sliding window.
// X-Forwarded-For and X-Real-IP are honoured when present.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			WriteDetail(w, r, http.StatusTooManyRequests, "Too many requests")
		}),
	)
}
