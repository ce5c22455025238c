package dto

import "github.com/noah-isme/emphasis-lines-api/internal/models"

// CreateEvaluationRequest describes a weighted evaluation of a course.
type CreateEvaluationRequest struct {
	CourseID      int     `json:"course_id" validate:"required,gt=0"`
	Name          string  `json:"name" validate:"required"`
	WeightPercent float64 `json:"weight_percent" validate:"gte=0"`
}

// EvaluationPatch is merged over an existing evaluation.
type EvaluationPatch struct {
	CourseID      *int     `json:"course_id"`
	Name          *string  `json:"name"`
	WeightPercent *float64 `json:"weight_percent" validate:"omitempty,gte=0"`
}

// Apply merges the patch over evaluation.
func (p EvaluationPatch) Apply(evaluation *models.Evaluation) {
	setInt(&evaluation.CourseID, p.CourseID)
	setString(&evaluation.Name, p.Name)
	if p.WeightPercent != nil {
		evaluation.WeightPercent = *p.WeightPercent
	}
}
