package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireUpload rejects read endpoints until a dataset has been ingested.
func RequireUpload(ready func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "File not uploaded yet"})
			return
		}
		c.Next()
	}
}
