package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/service"
	"github.com/noah-isme/emphasis-lines-api/pkg/response"
)

// CourseLineHandler exposes emphasis line endpoints.
type CourseLineHandler struct {
	lines *service.CourseLineService
}

// NewCourseLineHandler constructs CourseLineHandler.
func NewCourseLineHandler(lines *service.CourseLineService) *CourseLineHandler {
	return &CourseLineHandler{lines: lines}
}

// List godoc
// @Summary List active course lines
// @Tags CourseLines
// @Produce json
// @Param program query string false "Program filter; All disables it"
// @Success 200 {object} response.Envelope
// @Router /course-lines [get]
func (h *CourseLineHandler) List(c *gin.Context) {
	lines, err := h.lines.List(c.Request.Context(), dto.CourseLineFilter{Program: c.Query("program")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lines)
}

// Create godoc
// @Summary Create course line and its course
// @Tags CourseLines
// @Accept json
// @Produce json
// @Param payload body dto.CreateCourseLineRequest true "Course line payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /course-lines [post]
func (h *CourseLineHandler) Create(c *gin.Context) {
	var req dto.CreateCourseLineRequest
	if !bindJSON(c, &req) {
		return
	}
	line, err := h.lines.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, line)
}

// Get godoc
// @Summary Get course line
// @Tags CourseLines
// @Produce json
// @Param id path int true "Course line ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course-lines/{id} [get]
func (h *CourseLineHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	line, err := h.lines.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, line)
}

// Update godoc
// @Summary Patch course line
// @Tags CourseLines
// @Accept json
// @Produce json
// @Param id path int true "Course line ID"
// @Param payload body dto.CourseLinePatch true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course-lines/{id} [patch]
func (h *CourseLineHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch dto.CourseLinePatch
	if !bindJSON(c, &patch) {
		return
	}
	line, err := h.lines.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, line)
}

// Deactivate godoc
// @Summary Deactivate course line
// @Tags CourseLines
// @Param id path int true "Course line ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /course-lines/{id} [delete]
func (h *CourseLineHandler) Deactivate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.lines.Deactivate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
