package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
	"github.com/noah-isme/emphasis-lines-api/internal/service"
	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
	"github.com/noah-isme/emphasis-lines-api/pkg/response"
)

// RequestHandler exposes the enrollment request workflow.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// Create godoc
// @Summary Apply to a course line
// @Description Students always apply for themselves; the student id is taken from the token.
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateRequestRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		return
	}
	var req dto.CreateRequestRequest
	if !bindJSON(c, &req) {
		return
	}
	if claims.Role == models.RoleStudent {
		req.StudentID = claims.UserID
	}
	created, err := h.requests.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// ListAll godoc
// @Summary List requests
// @Tags Requests
// @Produce json
// @Param status query string false "pending, approved, rejected or cancelled"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) ListAll(c *gin.Context) {
	filter := dto.RequestFilter{Status: models.RequestStatus(c.Query("status"))}
	requests, err := h.requests.ListAll(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, requests)
}

// ListForStudent godoc
// @Summary List the requests of a student
// @Tags Requests
// @Produce json
// @Param id path int true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/requests [get]
func (h *RequestHandler) ListForStudent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	requests, err := h.requests.ListForStudent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, requests)
}

// Approve godoc
// @Summary Approve a pending request
// @Description Enrolls the student in the first active course of the line and takes one seat.
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	approved, err := h.requests.Approve(c.Request.Context(), id, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, approved)
}

// Reject godoc
// @Summary Reject a pending request
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param payload body dto.ReviewRequestRequest false "Reason"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body dto.ReviewRequestRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &body) {
		return
	}
	rejected, err := h.requests.Reject(c.Request.Context(), id, claims.UserID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rejected)
}

// Cancel godoc
// @Summary Cancel a pending request
// @Description Students may only cancel their own requests.
// @Tags Requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /requests/{id}/cancel [post]
func (h *RequestHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if claims.Role == models.RoleStudent {
		existing, err := h.requests.Get(c.Request.Context(), id)
		if err != nil {
			response.Error(c, err)
			return
		}
		if existing.StudentID != claims.UserID {
			response.Error(c, appErrors.ErrForbidden)
			return
		}
	}
	cancelled, err := h.requests.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, cancelled)
}
