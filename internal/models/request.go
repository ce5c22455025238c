package models

import "time"

// RequestStatus represents the lifecycle of an enrollment request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// UnknownName labels references that cannot be resolved.
const UnknownName = "Unknown"

// ApplicantSnapshot is copied into a request when it is created and never resynced.
type ApplicantSnapshot struct {
	Name        string   `json:"name"`
	NationalID  string   `json:"national_id"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Program     string   `json:"program"`
	Term        int      `json:"term"`
	Average     float64  `json:"average"`
	Code        string   `json:"code"`
	Attachments []string `json:"attachments,omitempty"`
}

// Request is a student's application to join a course line.
type Request struct {
	ID            int               `json:"id"`
	StudentID     int               `json:"student_id"`
	CourseLineID  int               `json:"course_line_id"`
	Applicant     ApplicantSnapshot `json:"applicant"`
	RequestedAt   time.Time         `json:"requested_at"`
	Status        RequestStatus     `json:"status"`
	ReviewerID    *int              `json:"reviewer_id,omitempty"`
	DecisionNotes string            `json:"decision_notes"`
	DecidedAt     *time.Time        `json:"decided_at,omitempty"`
}

// RequestDetail adds display names resolved at read time.
type RequestDetail struct {
	Request
	StudentName    string `json:"student_name,omitempty"`
	CourseLineName string `json:"course_line_name"`
}
