package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
	"github.com/noah-isme/emphasis-lines-api/pkg/response"
)

// ReadinessProbe reports whether the document has been loaded.
type ReadinessProbe interface {
	IsReady() bool
}

// RequireReady answers 503 until the initial document load has completed.
func RequireReady(probe ReadinessProbe) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !probe.IsReady() {
			response.Error(c, appErrors.ErrNotReady)
			c.Abort()
			return
		}
		c.Next()
	}
}
