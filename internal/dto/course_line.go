package dto

import "github.com/noah-isme/emphasis-lines-api/internal/models"

// AllPrograms disables the program filter when listing course lines.
const AllPrograms = "All"

// CreateCourseLineRequest describes a new emphasis line. The paired course is created from it.
type CreateCourseLineRequest struct {
	Code          string `json:"code" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Program       string `json:"program" validate:"required"`
	Description   string `json:"description"`
	TotalSeats    int    `json:"total_seats" validate:"gte=0"`
	Modality      string `json:"modality"`
	DurationWeeks int    `json:"duration_weeks" validate:"gte=0"`
	Credits       int    `json:"credits" validate:"gte=0"`
	Prerequisites string `json:"prerequisites"`
	Competencies  string `json:"competencies"`
	Tools         string `json:"tools"`
	StartDate     string `json:"start_date"`
	Schedule      string `json:"schedule"`
	Classroom     string `json:"classroom"`
	ProfessorID   int    `json:"professor_id"`
}

// CourseLinePatch is merged over an existing line; nil fields are left untouched.
type CourseLinePatch struct {
	Code           *string        `json:"code"`
	Name           *string        `json:"name"`
	Program        *string        `json:"program"`
	Description    *string        `json:"description"`
	TotalSeats     *int           `json:"total_seats"`
	AvailableSeats *int           `json:"available_seats"`
	Modality       *string        `json:"modality"`
	DurationWeeks  *int           `json:"duration_weeks"`
	Credits        *int           `json:"credits"`
	Prerequisites  *string        `json:"prerequisites"`
	Competencies   *string        `json:"competencies"`
	Tools          *string        `json:"tools"`
	StartDate      *string        `json:"start_date"`
	Schedule       *string        `json:"schedule"`
	Classroom      *string        `json:"classroom"`
	ProfessorID    *int           `json:"professor_id"`
	Status         *models.Status `json:"status" validate:"omitempty,oneof=active inactive"`
}

// Apply merges the patch over line.
func (p CourseLinePatch) Apply(line *models.CourseLine) {
	setString(&line.Code, p.Code)
	setString(&line.Name, p.Name)
	setString(&line.Program, p.Program)
	setString(&line.Description, p.Description)
	setInt(&line.TotalSeats, p.TotalSeats)
	setInt(&line.AvailableSeats, p.AvailableSeats)
	setString(&line.Modality, p.Modality)
	setInt(&line.DurationWeeks, p.DurationWeeks)
	setInt(&line.Credits, p.Credits)
	setString(&line.Prerequisites, p.Prerequisites)
	setString(&line.Competencies, p.Competencies)
	setString(&line.Tools, p.Tools)
	setString(&line.StartDate, p.StartDate)
	setString(&line.Schedule, p.Schedule)
	setString(&line.Classroom, p.Classroom)
	setInt(&line.ProfessorID, p.ProfessorID)
	if p.Status != nil {
		line.Status = *p.Status
	}
}

// CourseLineFilter narrows course line listings.
type CourseLineFilter struct {
	Program string
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
