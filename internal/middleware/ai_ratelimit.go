package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/Nina932/nyx/internal/ratelimit"
	"github.com/Nina932/nyx/pkg/logger"
	"github.com/Nina932/nyx/pkg/response"
	"github.com/gin-gonic/gin"
)

const aiLimitMessage = "AI rate limit exceeded. Please try again later."

// AIRateLimit charges one call against the caller's AI window. It must run
// after AuthRequired; admins pass without touching the counter.
func AIRateLimit(l *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ratelimit.Key(GetUserID(c), c.ClientIP())

		d, err := l.Allow(c.Request.Context(), key, GetRole(c))
		if err != nil {
			log := logger.For(c)
			log.Error().Err(err).Str("key", key).Msg("rate limiter unavailable")
			response.Error(c, response.NewServerError("Rate limiter unavailable", err))
			return
		}

		if !d.ResetAt.IsZero() {
			reset := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
			if reset < 0 {
				reset = 0
			}
			c.Header("RateLimit-Limit", strconv.Itoa(d.Limit))
			c.Header("RateLimit-Remaining", strconv.Itoa(d.Remaining))
			c.Header("RateLimit-Reset", strconv.Itoa(reset))
		}

		if !d.Allowed {
			response.TooManyRequests(c, aiLimitMessage)
			return
		}
		c.Next()
	}
}
