package models

import "time"

// UnassignedProfessor is shown when a line or course references an unknown professor.
const UnassignedProfessor = "Unassigned"

// CourseLine is an emphasis line offered to a program.
type CourseLine struct {
	ID             int       `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Program        string    `json:"program"`
	Description    string    `json:"description,omitempty"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	Modality       string    `json:"modality"`
	DurationWeeks  int       `json:"duration_weeks"`
	Credits        int       `json:"credits"`
	Prerequisites  string    `json:"prerequisites"`
	Competencies   string    `json:"competencies"`
	Tools          string    `json:"tools"`
	StartDate      string    `json:"start_date,omitempty"`
	Schedule       string    `json:"schedule,omitempty"`
	Classroom      string    `json:"classroom,omitempty"`
	ProfessorID    int       `json:"professor_id"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// CourseLineDetail enriches CourseLine with the professor display name.
type CourseLineDetail struct {
	CourseLine
	ProfessorName string `json:"professor_name"`
}
