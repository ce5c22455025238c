package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
)

// CourseService manages courses.
type CourseService struct {
	store       documentStore
	validator   *validator.Validate
	logger      *zap.Logger
	defaultTerm string
}

// NewCourseService constructs CourseService.
func NewCourseService(store documentStore, validate *validator.Validate, logger *zap.Logger, defaultTerm string) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultTerm == "" {
		defaultTerm = models.DefaultTerm
	}
	return &CourseService{store: store, validator: validate, logger: logger, defaultTerm: defaultTerm}
}

// Create stores an active course with all seats available.
func (s *CourseService) Create(ctx context.Context, req dto.CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course payload")
	}
	var created models.Course
	err := s.store.Update(ctx, func(doc *models.Document) error {
		created = appendCourse(doc, req, s.defaultTerm, nowUTC())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id int) (*models.Course, error) {
	var found *models.Course
	s.store.Read(func(doc *models.Document) {
		if c := doc.FindCourse(id); c != nil {
			course := *c
			found = &course
		}
	})
	if found == nil {
		return nil, notFound("course not found")
	}
	return found, nil
}

// ListForProfessor returns the professor's active courses with line names and student counts.
func (s *CourseService) ListForProfessor(ctx context.Context, professorID int) ([]models.CourseDetail, error) {
	result := make([]models.CourseDetail, 0)
	s.store.Read(func(doc *models.Document) {
		for _, course := range doc.Courses {
			if course.ProfessorID != professorID || course.Status != models.StatusActive {
				continue
			}
			lineName := models.GeneralLineName
			if line := doc.FindCourseLine(course.CourseLineID); line != nil {
				lineName = line.Name
			}
			count := 0
			for _, e := range doc.Enrollments {
				if e.CourseID == course.ID && e.Status == models.StatusActive {
					count++
				}
			}
			result = append(result, models.CourseDetail{Course: course, CourseLineName: lineName, StudentCount: count})
		}
	})
	return result, nil
}

func appendCourse(doc *models.Document, req dto.CreateCourseRequest, defaultTerm string, now time.Time) models.Course {
	term := req.Term
	if term == "" {
		term = defaultTerm
	}
	course := models.Course{
		ID:             models.NextID(doc.Courses, func(c models.Course) int { return c.ID }),
		Code:           req.Code,
		Name:           req.Name,
		CourseLineID:   req.CourseLineID,
		ProfessorID:    req.ProfessorID,
		Term:           term,
		Schedule:       req.Schedule,
		Classroom:      req.Classroom,
		Modality:       req.Modality,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		Status:         models.StatusActive,
		CreatedAt:      now,
	}
	doc.Courses = append(doc.Courses, course)
	return course
}
