package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
)

const defaultDurationWeeks = 16

// CourseLineService manages emphasis lines and the course paired with each of them.
type CourseLineService struct {
	store       documentStore
	validator   *validator.Validate
	logger      *zap.Logger
	defaultTerm string
}

// NewCourseLineService constructs CourseLineService. An empty defaultTerm falls back to models.DefaultTerm.
func NewCourseLineService(store documentStore, validate *validator.Validate, logger *zap.Logger, defaultTerm string) *CourseLineService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultTerm == "" {
		defaultTerm = models.DefaultTerm
	}
	return &CourseLineService{store: store, validator: validate, logger: logger, defaultTerm: defaultTerm}
}

// Create stores a new active line and its course in one unit of work.
func (s *CourseLineService) Create(ctx context.Context, req dto.CreateCourseLineRequest) (*models.CourseLine, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid course line payload")
	}
	duration := req.DurationWeeks
	if duration == 0 {
		duration = defaultDurationWeeks
	}

	var created models.CourseLine
	err := s.store.Update(ctx, func(doc *models.Document) error {
		now := nowUTC()
		line := models.CourseLine{
			ID:             models.NextID(doc.CourseLines, func(l models.CourseLine) int { return l.ID }),
			Code:           req.Code,
			Name:           req.Name,
			Program:        req.Program,
			Description:    req.Description,
			TotalSeats:     req.TotalSeats,
			AvailableSeats: req.TotalSeats,
			Modality:       req.Modality,
			DurationWeeks:  duration,
			Credits:        req.Credits,
			Prerequisites:  req.Prerequisites,
			Competencies:   req.Competencies,
			Tools:          req.Tools,
			StartDate:      req.StartDate,
			Schedule:       req.Schedule,
			Classroom:      req.Classroom,
			ProfessorID:    req.ProfessorID,
			Status:         models.StatusActive,
			CreatedAt:      now,
		}
		doc.CourseLines = append(doc.CourseLines, line)
		appendCourse(doc, dto.CreateCourseRequest{
			Code:         req.Code,
			Name:         req.Name,
			CourseLineID: line.ID,
			ProfessorID:  req.ProfessorID,
			Schedule:     req.Schedule,
			Classroom:    req.Classroom,
			Modality:     req.Modality,
			TotalSeats:   req.TotalSeats,
		}, s.defaultTerm, now)
		created = line
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("course line created", zap.Int("id", created.ID), zap.String("code", created.Code))
	return &created, nil
}

// List returns active lines, optionally restricted to one program.
func (s *CourseLineService) List(ctx context.Context, filter dto.CourseLineFilter) ([]models.CourseLineDetail, error) {
	result := make([]models.CourseLineDetail, 0)
	s.store.Read(func(doc *models.Document) {
		for _, line := range doc.CourseLines {
			if line.Status != models.StatusActive {
				continue
			}
			if filter.Program != "" && filter.Program != dto.AllPrograms && line.Program != filter.Program {
				continue
			}
			result = append(result, models.CourseLineDetail{
				CourseLine:    line,
				ProfessorName: professorName(doc, line.ProfessorID),
			})
		}
	})
	return result, nil
}

// Get returns a line by id regardless of status.
func (s *CourseLineService) Get(ctx context.Context, id int) (*models.CourseLine, error) {
	var found *models.CourseLine
	s.store.Read(func(doc *models.Document) {
		if l := doc.FindCourseLine(id); l != nil {
			line := *l
			found = &line
		}
	})
	if found == nil {
		return nil, notFound("course line not found")
	}
	return found, nil
}

// Update merges patch over the line.
func (s *CourseLineService) Update(ctx context.Context, id int, patch dto.CourseLinePatch) (*models.CourseLine, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, validationError(err, "invalid course line patch")
	}
	var updated models.CourseLine
	err := s.store.Update(ctx, func(doc *models.Document) error {
		line := doc.FindCourseLine(id)
		if line == nil {
			return notFound("course line not found")
		}
		patch.Apply(line)
		updated = *line
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Deactivate soft deletes a line. Its id is never reused.
func (s *CourseLineService) Deactivate(ctx context.Context, id int) error {
	return s.store.Update(ctx, func(doc *models.Document) error {
		line := doc.FindCourseLine(id)
		if line == nil {
			return notFound("course line not found")
		}
		line.Status = models.StatusInactive
		return nil
	})
}

func professorName(doc *models.Document, id int) string {
	if u := doc.FindUser(id); u != nil {
		return u.Name
	}
	return models.UnassignedProfessor
}
