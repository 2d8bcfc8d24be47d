package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultCORSHeaders are the request headers the web clients send, including the
// ones a browser needs for the websocket handshake.
var DefaultCORSHeaders = []string{
	"Content-Type", "Content-Length", "Accept-Encoding", "Authorization",
	"Accept", "Origin", "Cache-Control", "X-Requested-With",
	"Sec-WebSocket-Protocol", "Sec-WebSocket-Version", "Sec-WebSocket-Key", "Upgrade",
}

// CORSMiddlewares allows a single origin. An empty headers list means
// DefaultCORSHeaders. Preflight requests end here with 204.
func CORSMiddlewares(origin string, headers []string) gin.HandlerFunc {
	if len(headers) == 0 {
		headers = DefaultCORSHeaders
	}
	allowHeaders := strings.Join(headers, ", ")

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
