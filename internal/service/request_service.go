package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
)

const (
	newRequestTitle = "New enrollment request"
	approvedTitle   = "Request approved"
	approvedMessage = "Your request has been approved. The course is now available in your dashboard."
	rejectedTitle   = "Request rejected"
	rejectedMessage = "Your request has been rejected."
)

// RequestService drives the request lifecycle: pending, then approved, rejected or cancelled.
type RequestService struct {
	store         documentStore
	validator     *validator.Validate
	logger        *zap.Logger
	notifyUserIDs []int
}

// NewRequestService constructs RequestService. notifyUserIDs receive new-request notifications;
// when empty the lowest-id active coordinator is notified.
func NewRequestService(store documentStore, validate *validator.Validate, logger *zap.Logger, notifyUserIDs []int) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{
		store:         store,
		validator:     validate,
		logger:        logger,
		notifyUserIDs: append([]int{}, notifyUserIDs...),
	}
}

// Create stores a pending request and notifies the reviewers.
func (s *RequestService) Create(ctx context.Context, req dto.CreateRequestRequest) (*models.Request, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid request payload")
	}
	var created models.Request
	err := s.store.Update(ctx, func(doc *models.Document) error {
		created = models.Request{
			ID:           models.NextID(doc.Requests, func(r models.Request) int { return r.ID }),
			StudentID:    req.StudentID,
			CourseLineID: req.CourseLineID,
			Applicant:    req.Snapshot(),
			RequestedAt:  nowUTC(),
			Status:       models.RequestStatusPending,
		}
		doc.Requests = append(doc.Requests, created)

		recipients := s.recipients(doc)
		if len(recipients) == 0 {
			s.logger.Warn("no reviewer to notify about request", zap.Int("request_id", created.ID))
		}
		message := fmt.Sprintf("%s applied to %s.", req.Name, courseLineName(doc, req.CourseLineID))
		for _, userID := range recipients {
			appendNotification(doc, userID, newRequestTitle, message, models.NotificationInfo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Get returns a request by id.
func (s *RequestService) Get(ctx context.Context, id int) (*models.Request, error) {
	var found *models.Request
	s.store.Read(func(doc *models.Document) {
		if r := doc.FindRequest(id); r != nil {
			request := *r
			found = &request
		}
	})
	if found == nil {
		return nil, notFound("request not found")
	}
	return found, nil
}

// ListForStudent returns every request of the student with the line name resolved.
func (s *RequestService) ListForStudent(ctx context.Context, studentID int) ([]models.RequestDetail, error) {
	result := make([]models.RequestDetail, 0)
	s.store.Read(func(doc *models.Document) {
		for _, r := range doc.Requests {
			if r.StudentID != studentID {
				continue
			}
			result = append(result, models.RequestDetail{Request: r, CourseLineName: courseLineName(doc, r.CourseLineID)})
		}
	})
	return result, nil
}

// ListAll returns requests, optionally restricted to one status.
func (s *RequestService) ListAll(ctx context.Context, filter dto.RequestFilter) ([]models.RequestDetail, error) {
	result := make([]models.RequestDetail, 0)
	s.store.Read(func(doc *models.Document) {
		for _, r := range doc.Requests {
			if filter.Status != "" && r.Status != filter.Status {
				continue
			}
			studentName := r.Applicant.Name
			if u := doc.FindUser(r.StudentID); u != nil {
				studentName = u.Name
			}
			result = append(result, models.RequestDetail{
				Request:        r,
				StudentName:    studentName,
				CourseLineName: courseLineName(doc, r.CourseLineID),
			})
		}
	})
	return result, nil
}

// Approve enrolls the student in the first active course of the line, takes one seat from the
// course and the line, and notifies the student. A line without an active course is approved
// without enrollment.
func (s *RequestService) Approve(ctx context.Context, id, reviewerID int) (*models.Request, error) {
	var approved models.Request
	err := s.store.Update(ctx, func(doc *models.Document) error {
		req, err := pendingRequest(doc, id)
		if err != nil {
			return err
		}
		now := nowUTC()
		if course := firstActiveCourse(doc, req.CourseLineID); course != nil {
			line := doc.FindCourseLine(req.CourseLineID)
			if course.AvailableSeats <= 0 || (line != nil && line.AvailableSeats <= 0) {
				return appErrors.Clone(appErrors.ErrNoSeats, fmt.Sprintf("course %s has no seats available", course.Code))
			}
			appendEnrollment(doc, req.StudentID, course.ID, now)
			course.AvailableSeats--
			if line != nil {
				line.AvailableSeats--
			}
		} else {
			s.logger.Warn("approved request has no active course", zap.Int("request_id", id), zap.Int("course_line_id", req.CourseLineID))
		}

		decide(req, models.RequestStatusApproved, reviewerID, "", now)
		appendNotification(doc, req.StudentID, approvedTitle, approvedMessage, models.NotificationSuccess)
		approved = *req
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("request approved", zap.Int("request_id", id), zap.Int("reviewer_id", reviewerID))
	return &approved, nil
}

// Reject records the reason and notifies the student.
func (s *RequestService) Reject(ctx context.Context, id, reviewerID int, reason string) (*models.Request, error) {
	reason = strings.TrimSpace(reason)
	var rejected models.Request
	err := s.store.Update(ctx, func(doc *models.Document) error {
		req, err := pendingRequest(doc, id)
		if err != nil {
			return err
		}
		decide(req, models.RequestStatusRejected, reviewerID, reason, nowUTC())
		message := rejectedMessage
		if reason != "" {
			message = fmt.Sprintf("%s Reason: %s", rejectedMessage, reason)
		}
		appendNotification(doc, req.StudentID, rejectedTitle, message, models.NotificationError)
		rejected = *req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rejected, nil
}

// Cancel withdraws a pending request.
func (s *RequestService) Cancel(ctx context.Context, id int) (*models.Request, error) {
	var cancelled models.Request
	err := s.store.Update(ctx, func(doc *models.Document) error {
		req, err := pendingRequest(doc, id)
		if err != nil {
			return err
		}
		req.Status = models.RequestStatusCancelled
		cancelled = *req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cancelled, nil
}

func (s *RequestService) recipients(doc *models.Document) []int {
	if len(s.notifyUserIDs) > 0 {
		return s.notifyUserIDs
	}
	lowest := 0
	for _, u := range doc.Users {
		if u.Role == models.RoleCoordinator && u.Status == models.StatusActive && (lowest == 0 || u.ID < lowest) {
			lowest = u.ID
		}
	}
	if lowest == 0 {
		return nil
	}
	return []int{lowest}
}

func pendingRequest(doc *models.Document, id int) (*models.Request, error) {
	req := doc.FindRequest(id)
	if req == nil {
		return nil, notFound("request not found")
	}
	if req.Status != models.RequestStatusPending {
		return nil, appErrors.Clone(appErrors.ErrRequestNotPending, fmt.Sprintf("request is already %s", req.Status))
	}
	return req, nil
}

func decide(req *models.Request, status models.RequestStatus, reviewerID int, notes string, at time.Time) {
	reviewer := reviewerID
	decidedAt := at
	req.Status = status
	req.ReviewerID = &reviewer
	req.DecisionNotes = notes
	req.DecidedAt = &decidedAt
}

func firstActiveCourse(doc *models.Document, courseLineID int) *models.Course {
	for i := range doc.Courses {
		if doc.Courses[i].CourseLineID == courseLineID && doc.Courses[i].Status == models.StatusActive {
			return &doc.Courses[i]
		}
	}
	return nil
}

func courseLineName(doc *models.Document, id int) string {
	if line := doc.FindCourseLine(id); line != nil {
		return line.Name
	}
	return models.UnknownName
}
