package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CredentialVerifier checks a username/password pair against the user store.
type CredentialVerifier interface {
	Verify(c *gin.Context, username, password string) bool
}

// BasicAuth gates a route group behind HTTP Basic credentials matching a
// stored user.
func BasicAuth(verifier CredentialVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="restricted"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing basic auth credentials"})
			return
		}

		if !verifier.Verify(c, username, password) {
			c.Header("WWW-Authenticate", `Basic realm="restricted"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		c.Set("username", username)
		c.Next()
	}
}
