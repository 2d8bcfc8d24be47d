package middlewares

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders locks responses down for browsers. Strict-Transport-Security is
// only sent when the server is published over https.
func SecurityHeaders(https bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Referrer-Policy", "no-referrer")
		if https {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		// responses carry tokens and identities
		c.Header("Cache-Control", "no-store")

		c.Next()
	}
}
