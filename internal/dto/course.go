package dto

// CreateCourseRequest describes a course. An empty term falls back to the configured default.
type CreateCourseRequest struct {
	Code         string `json:"code" validate:"required"`
	Name         string `json:"name" validate:"required"`
	CourseLineID int    `json:"course_line_id"`
	ProfessorID  int    `json:"professor_id"`
	Term         string `json:"term"`
	Schedule     string `json:"schedule"`
	Classroom    string `json:"classroom"`
	Modality     string `json:"modality"`
	TotalSeats   int    `json:"total_seats" validate:"gte=0"`
}
