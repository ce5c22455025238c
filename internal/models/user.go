package models

// UserRole represents the roles taking part in the enrollment workflow.
type UserRole string

const (
	RoleStudent     UserRole = "student"
	RoleProfessor   UserRole = "professor"
	RoleCoordinator UserRole = "coordinator"
)

// Status is the shared active/inactive flag used by users, lines, courses and enrollments.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User is an account of the enrollment system. Password is stored as given.
type User struct {
	ID         int      `json:"id"`
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password,omitempty"`
	Role       UserRole `json:"role"`
	NationalID string   `json:"national_id,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Program    string   `json:"program,omitempty"`
	Term       int      `json:"term,omitempty"`
	Average    float64  `json:"average,omitempty"`
	Status     Status   `json:"status"`
}

// Public returns a copy without the password.
func (u User) Public() User {
	u.Password = ""
	return u
}
