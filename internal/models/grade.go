package models

import "time"

// Grade is the value a student obtained in one evaluation.
type Grade struct {
	ID           int       `json:"id"`
	EvaluationID int       `json:"evaluation_id"`
	StudentID    int       `json:"student_id"`
	CourseID     int       `json:"course_id"`
	Value        float64   `json:"value"`
	RecordedAt   time.Time `json:"recorded_at"`
}
