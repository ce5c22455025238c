package dto

// EnrollStudentRequest creates an enrollment directly, without seat or duplicate checks.
type EnrollStudentRequest struct {
	StudentID int `json:"student_id" validate:"required,gt=0"`
	CourseID  int `json:"course_id" validate:"required,gt=0"`
}
