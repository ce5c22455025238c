package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/emphasis-lines-api/internal/service"
	"github.com/noah-isme/emphasis-lines-api/pkg/response"
)

// UserHandler exposes account lookups.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}

// ListProfessors godoc
// @Summary List active professors
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/professors [get]
func (h *UserHandler) ListProfessors(c *gin.Context) {
	professors, err := h.users.ListProfessors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, professors)
}
