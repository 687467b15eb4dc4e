package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/smarteats/backend/config"
)

func SecurityHeaders() gin.HandlerFunc {
	csp := config.Getenv("CSP_POLICY", "default-src 'self'; connect-src 'self' ws: wss:")
	hsts := config.Getenv("HSTS_POLICY", "max-age=31536000; includeSubDomains")

	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", csp)
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Strict-Transport-Security", hsts)

		c.Next()
	}
}
