package dto

// RecordGradeRequest upserts the grade of a student in one evaluation.
type RecordGradeRequest struct {
	EvaluationID int     `json:"evaluation_id" validate:"required,gt=0"`
	StudentID    int     `json:"student_id" validate:"required,gt=0"`
	CourseID     int     `json:"course_id" validate:"required,gt=0"`
	Value        float64 `json:"value" validate:"gte=0"`
}

// FinalGradeResponse reports a computed final grade.
type FinalGradeResponse struct {
	StudentID  int     `json:"student_id"`
	CourseID   int     `json:"course_id"`
	FinalGrade float64 `json:"final_grade"`
}
