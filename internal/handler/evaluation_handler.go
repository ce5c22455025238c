package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/service"
	"github.com/noah-isme/emphasis-lines-api/pkg/response"
)

// EvaluationHandler exposes evaluation endpoints.
type EvaluationHandler struct {
	evaluations *service.EvaluationService
}

// NewEvaluationHandler constructs EvaluationHandler.
func NewEvaluationHandler(evaluations *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// ListForCourse godoc
// @Summary List the evaluations of a course
// @Tags Evaluations
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/evaluations [get]
func (h *EvaluationHandler) ListForCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	evaluations, err := h.evaluations.ListForCourse(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, evaluations)
}

// Create godoc
// @Summary Create evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body dto.CreateEvaluationRequest true "Evaluation payload"
// @Success 201 {object} response.Envelope
// @Router /evaluations [post]
func (h *EvaluationHandler) Create(c *gin.Context) {
	var req dto.CreateEvaluationRequest
	if !bindJSON(c, &req) {
		return
	}
	evaluation, err := h.evaluations.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, evaluation)
}

// Update godoc
// @Summary Patch evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param id path int true "Evaluation ID"
// @Param payload body dto.EvaluationPatch true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /evaluations/{id} [patch]
func (h *EvaluationHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch dto.EvaluationPatch
	if !bindJSON(c, &patch) {
		return
	}
	evaluation, err := h.evaluations.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, evaluation)
}

// Delete godoc
// @Summary Delete evaluation and its grades
// @Tags Evaluations
// @Param id path int true "Evaluation ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /evaluations/{id} [delete]
func (h *EvaluationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.evaluations.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
