package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
)

// EvaluationService manages the weighted evaluations of a course.
type EvaluationService struct {
	store     documentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEvaluationService constructs EvaluationService.
func NewEvaluationService(store documentStore, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EvaluationService{store: store, validator: validate, logger: logger}
}

// Create stores an evaluation.
func (s *EvaluationService) Create(ctx context.Context, req dto.CreateEvaluationRequest) (*models.Evaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid evaluation payload")
	}
	var created models.Evaluation
	err := s.store.Update(ctx, func(doc *models.Document) error {
		created = models.Evaluation{
			ID:            models.NextID(doc.Evaluations, func(e models.Evaluation) int { return e.ID }),
			CourseID:      req.CourseID,
			Name:          req.Name,
			WeightPercent: req.WeightPercent,
		}
		doc.Evaluations = append(doc.Evaluations, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListForCourse returns the evaluations of a course.
func (s *EvaluationService) ListForCourse(ctx context.Context, courseID int) ([]models.Evaluation, error) {
	result := make([]models.Evaluation, 0)
	s.store.Read(func(doc *models.Document) {
		for _, e := range doc.Evaluations {
			if e.CourseID == courseID {
				result = append(result, e)
			}
		}
	})
	return result, nil
}

// Get returns an evaluation by id.
func (s *EvaluationService) Get(ctx context.Context, id int) (*models.Evaluation, error) {
	var found *models.Evaluation
	s.store.Read(func(doc *models.Document) {
		if e := doc.FindEvaluation(id); e != nil {
			evaluation := *e
			found = &evaluation
		}
	})
	if found == nil {
		return nil, notFound("evaluation not found")
	}
	return found, nil
}

// Update merges patch over the evaluation.
func (s *EvaluationService) Update(ctx context.Context, id int, patch dto.EvaluationPatch) (*models.Evaluation, error) {
	if err := s.validator.Struct(patch); err != nil {
		return nil, validationError(err, "invalid evaluation patch")
	}
	var updated models.Evaluation
	err := s.store.Update(ctx, func(doc *models.Document) error {
		evaluation := doc.FindEvaluation(id)
		if evaluation == nil {
			return notFound("evaluation not found")
		}
		patch.Apply(evaluation)
		updated = *evaluation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the evaluation and every grade recorded against it.
func (s *EvaluationService) Delete(ctx context.Context, id int) error {
	removed := 0
	err := s.store.Update(ctx, func(doc *models.Document) error {
		if doc.FindEvaluation(id) == nil {
			return notFound("evaluation not found")
		}
		evaluations := doc.Evaluations[:0]
		for _, e := range doc.Evaluations {
			if e.ID != id {
				evaluations = append(evaluations, e)
			}
		}
		doc.Evaluations = evaluations

		grades := doc.Grades[:0]
		for _, g := range doc.Grades {
			if g.EvaluationID != id {
				grades = append(grades, g)
			}
		}
		removed = len(doc.Grades) - len(grades)
		doc.Grades = grades
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("evaluation deleted", zap.Int("id", id), zap.Int("grades_removed", removed))
	return nil
}
