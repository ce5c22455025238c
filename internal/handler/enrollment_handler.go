package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/service"
	"github.com/noah-isme/emphasis-lines-api/pkg/response"
)

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Create godoc
// @Summary Enroll student directly
// @Description Bypasses the request workflow; seats are not checked.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.EnrollStudentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req dto.EnrollStudentRequest
	if !bindJSON(c, &req) {
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// ListForStudent godoc
// @Summary List the active enrollments of a student
// @Tags Enrollments
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *EnrollmentHandler) ListForStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	enrollments, err := h.enrollments.ListForStudent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, enrollments)
}
