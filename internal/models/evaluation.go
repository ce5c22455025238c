package models

// Evaluation is a weighted assessment of a course. Weights are not required to sum to 100.
type Evaluation struct {
	ID            int     `json:"id"`
	CourseID      int     `json:"course_id"`
	Name          string  `json:"name"`
	WeightPercent float64 `json:"weight_percent"`
}
