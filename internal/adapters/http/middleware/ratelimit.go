package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jsamuelsen/quote-finder/internal/adapters/http/dto"
)

// RateLimit applies one token bucket to every request it sees. Requests
// over the budget get 429 with a Retry-After hint and are not queued.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), max(burst, 1))

	return func(c *gin.Context) {
		r := limiter.Reserve()
		if !r.OK() {
			abortWith(c, http.StatusTooManyRequests, dto.ErrorCodeRateLimited, "rate limit exceeded")
			return
		}

		if delay := r.Delay(); delay > 0 {
			r.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			abortWith(c, http.StatusTooManyRequests, dto.ErrorCodeRateLimited, "rate limit exceeded")

			return
		}

		c.Next()
	}
}
