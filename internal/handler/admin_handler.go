package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/emphasis-lines-api/internal/service"
	"github.com/noah-isme/emphasis-lines-api/pkg/response"
)

// AdminHandler exposes maintenance endpoints.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Reset godoc
// @Summary Reset every collection and reseed the default users
// @Tags Admin
// @Success 204
// @Failure 503 {object} response.Envelope
// @Router /admin/reset [post]
func (h *AdminHandler) Reset(c *gin.Context) {
	if err := h.admin.ResetAll(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
