package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
)

// GradeService records grades and derives weighted final grades.
type GradeService struct {
	store     documentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(store documentStore, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{store: store, validator: validate, logger: logger}
}

// Record upserts the grade of a student in an evaluation and refreshes the final grade
// of the matching enrollment. An existing grade keeps its course; only value and time change.
func (s *GradeService) Record(ctx context.Context, req dto.RecordGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid grade payload")
	}
	var recorded models.Grade
	err := s.store.Update(ctx, func(doc *models.Document) error {
		now := nowUTC()
		if g := findGrade(doc, req.EvaluationID, req.StudentID); g != nil {
			g.Value = req.Value
			g.RecordedAt = now
			recorded = *g
		} else {
			recorded = models.Grade{
				ID:           models.NextID(doc.Grades, func(g models.Grade) int { return g.ID }),
				EvaluationID: req.EvaluationID,
				StudentID:    req.StudentID,
				CourseID:     req.CourseID,
				Value:        req.Value,
				RecordedAt:   now,
			}
			doc.Grades = append(doc.Grades, recorded)
		}
		storeFinalGrade(doc, recorded.StudentID, recorded.CourseID, finalGrade(doc, recorded.StudentID, recorded.CourseID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &recorded, nil
}

// ComputeFinalGrade returns Σ value × weight / 100 over the course evaluations. Evaluations
// without a grade contribute zero. The result is stored in the matching enrollment when
// one exists and differs from the stored value.
func (s *GradeService) ComputeFinalGrade(ctx context.Context, studentID, courseID int) (float64, error) {
	var result float64
	err := update(ctx, s.store, func(doc *models.Document) error {
		result = finalGrade(doc, studentID, courseID)
		if !storeFinalGrade(doc, studentID, courseID, result) {
			return errNoChange
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return result, nil
}

// ListForStudentCourse returns the student's grades in a course.
func (s *GradeService) ListForStudentCourse(ctx context.Context, studentID, courseID int) ([]models.Grade, error) {
	var result []models.Grade
	s.store.Read(func(doc *models.Document) {
		result = gradesFor(doc, studentID, courseID)
	})
	return result, nil
}

func findGrade(doc *models.Document, evaluationID, studentID int) *models.Grade {
	for i := range doc.Grades {
		if doc.Grades[i].EvaluationID == evaluationID && doc.Grades[i].StudentID == studentID {
			return &doc.Grades[i]
		}
	}
	return nil
}

func finalGrade(doc *models.Document, studentID, courseID int) float64 {
	total := 0.0
	for _, e := range doc.Evaluations {
		if e.CourseID != courseID {
			continue
		}
		if g := findGrade(doc, e.ID, studentID); g != nil {
			total += g.Value * e.WeightPercent / 100
		}
	}
	return total
}

// storeFinalGrade writes value into the first enrollment of the student in the course and
// reports whether anything changed.
func storeFinalGrade(doc *models.Document, studentID, courseID int, value float64) bool {
	for i := range doc.Enrollments {
		e := &doc.Enrollments[i]
		if e.StudentID != studentID || e.CourseID != courseID {
			continue
		}
		if e.FinalGrade != nil && *e.FinalGrade == value {
			return false
		}
		v := value
		e.FinalGrade = &v
		return true
	}
	return false
}
