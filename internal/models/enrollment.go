package models

import "time"

// Enrollment registers a student in a course.
type Enrollment struct {
	ID         int       `json:"id"`
	StudentID  int       `json:"student_id"`
	CourseID   int       `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Status     Status    `json:"status"`
	FinalGrade *float64  `json:"final_grade"`
}

// EnrollmentDetail is the student-facing view of an enrollment.
type EnrollmentDetail struct {
	Enrollment
	CourseName     string `json:"course_name"`
	CourseLineName string `json:"course_line_name"`
	ProfessorName  string `json:"professor_name"`
	Schedule       string `json:"schedule"`
	Classroom      string `json:"classroom"`
}

// CourseStudent is the professor-facing view of an enrollment with its grades.
type CourseStudent struct {
	Enrollment
	Name    string  `json:"name"`
	Code    string  `json:"code"`
	Email   string  `json:"email"`
	Program string  `json:"program"`
	Grades  []Grade `json:"grades"`
}
