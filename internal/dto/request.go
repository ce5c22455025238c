package dto

import "github.com/noah-isme/emphasis-lines-api/internal/models"

// CreateRequestRequest is a student's application. Applicant fields are snapshotted as given.
type CreateRequestRequest struct {
	StudentID    int      `json:"student_id" validate:"required,gt=0"`
	CourseLineID int      `json:"course_line_id" validate:"required,gt=0"`
	Name         string   `json:"name" validate:"required"`
	NationalID   string   `json:"national_id"`
	Email        string   `json:"email" validate:"omitempty,email"`
	Phone        string   `json:"phone"`
	Program      string   `json:"program"`
	Term         int      `json:"term" validate:"gte=0"`
	Average      float64  `json:"average" validate:"gte=0"`
	Code         string   `json:"code"`
	Attachments  []string `json:"attachments"`
}

// Snapshot copies the applicant fields.
func (r CreateRequestRequest) Snapshot() models.ApplicantSnapshot {
	var attachments []string
	if len(r.Attachments) > 0 {
		attachments = append([]string{}, r.Attachments...)
	}
	return models.ApplicantSnapshot{
		Name:        r.Name,
		NationalID:  r.NationalID,
		Email:       r.Email,
		Phone:       r.Phone,
		Program:     r.Program,
		Term:        r.Term,
		Average:     r.Average,
		Code:        r.Code,
		Attachments: attachments,
	}
}

// ReviewRequestRequest carries the reviewer's decision input. The reviewer is the caller.
type ReviewRequestRequest struct {
	Reason string `json:"reason"`
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	Status models.RequestStatus
}
