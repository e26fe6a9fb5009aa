package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/atinyakov/formresume/internal/models"
	"github.com/go-chi/httprate"
)

// RateLimit limits requests per client IP using a sliding window. Rejected
// requests get a 429 with the normalized error body.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(models.NewAPIError(
				http.StatusTooManyRequests,
				"Too many requests. Please try again later.",
			))
		}),
	)
}
