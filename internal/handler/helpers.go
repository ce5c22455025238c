package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/emphasis-lines-api/internal/middleware"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
	"github.com/noah-isme/emphasis-lines-api/pkg/response"
)

// pathID parses a positive integer route parameter, answering 400 when it is malformed.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s", name)))
		return 0, false
	}
	return id, true
}

// bindJSON decodes the request body, answering 400 when it is malformed.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
	}
	return claims
}
