package middleware

import (
	"crypto/subtle" // Constant time comparison
	"net/http"      // HTTP status codes
	"strings"       // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

const bearerPrefix = "Bearer "

// Authenticate reports whether header carries the bearer token secret.
// The error message tells a missing header apart from a wrong token.
func Authenticate(header, secret string) (bool, string) {
	// The header must be present and properly formatted
	if !strings.HasPrefix(header, bearerPrefix) {
		return false, "Authorization header required"
	}
	token := header[len(bearerPrefix):] // Strip the prefix, keep the rest verbatim
	if secret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
		return false, "Invalid API token"
	}
	return true, ""
}

// TokenAuthMiddleware rejects requests without the static API token
func TokenAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ok, msg := Authenticate(c.GetHeader("Authorization"), secret); !ok {
			// Abort before any handler touches the store
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Next() // Proceed to the next handler
	}
}
