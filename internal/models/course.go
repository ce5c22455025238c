package models

import "time"

// DefaultTerm is assigned to courses created without an explicit term.
const DefaultTerm = "2025-1"

// GeneralLineName labels courses whose line cannot be resolved.
const GeneralLineName = "General"

// Course is the teachable instance of a course line.
type Course struct {
	ID             int       `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	CourseLineID   int       `json:"course_line_id"`
	ProfessorID    int       `json:"professor_id"`
	Term           string    `json:"term"`
	Schedule       string    `json:"schedule,omitempty"`
	Classroom      string    `json:"classroom,omitempty"`
	Modality       string    `json:"modality,omitempty"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// CourseDetail is a professor-facing view of a course.
type CourseDetail struct {
	Course
	CourseLineName string `json:"course_line_name"`
	StudentCount   int    `json:"student_count"`
}
