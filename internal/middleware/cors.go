package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the configured frontend origins (comma separated) with
// credentials. "*" or an empty value allows any origin.
func CORS(frontendURL string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, origin := range strings.Split(frontendURL, ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			cfg.AllowOrigins = nil
			break
		}
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}
	if len(cfg.AllowOrigins) == 0 {
		// any origin, echoed back
		cfg.AllowOriginFunc = func(string) bool { return true }
	}
	return cors.New(cfg)
}
