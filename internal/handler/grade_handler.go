package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/service"
	"github.com/noah-isme/emphasis-lines-api/pkg/response"
)

// GradeHandler exposes grade endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Record godoc
// @Summary Record or replace a grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.RecordGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Record(c *gin.Context) {
	var req dto.RecordGradeRequest
	if !bindJSON(c, &req) {
		return
	}
	grade, err := h.grades.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grade)
}

// ListForStudentCourse godoc
// @Summary List a student's grades in a course
// @Tags Grades
// @Produce json
// @Param id path int true "Student ID"
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/courses/{courseId}/grades [get]
func (h *GradeHandler) ListForStudentCourse(c *gin.Context) {
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	grades, err := h.grades.ListForStudentCourse(c.Request.Context(), studentID, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, grades)
}

// FinalGrade godoc
// @Summary Compute a student's weighted final grade
// @Tags Grades
// @Produce json
// @Param id path int true "Student ID"
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/courses/{courseId}/final-grade [get]
func (h *GradeHandler) FinalGrade(c *gin.Context) {
	studentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	value, err := h.grades.ComputeFinalGrade(c.Request.Context(), studentID, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FinalGradeResponse{StudentID: studentID, CourseID: courseID, FinalGrade: value})
}
