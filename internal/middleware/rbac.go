package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
	"github.com/noah-isme/emphasis-lines-api/pkg/response"
)

// RequireRoles lets through users holding one of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return authorize("", roles)
}

// RequireSelfOrRoles lets through users holding one of roles, and the user whose id is the
// value of the route parameter param.
func RequireSelfOrRoles(param string, roles ...models.UserRole) gin.HandlerFunc {
	return authorize(param, roles)
}

func authorize(selfParam string, roles []models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		if selfParam != "" {
			if id, err := strconv.Atoi(c.Param(selfParam)); err == nil && id == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
