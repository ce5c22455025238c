package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
)

// EnrollmentService handles enrollment lookups and direct enrollment.
type EnrollmentService struct {
	store     documentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(store documentStore, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{store: store, validator: validate, logger: logger}
}

// Enroll creates an active enrollment. Seats and duplicates are not checked; the request
// workflow is the guarded path.
func (s *EnrollmentService) Enroll(ctx context.Context, req dto.EnrollStudentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid enrollment payload")
	}
	var created models.Enrollment
	err := s.store.Update(ctx, func(doc *models.Document) error {
		created = appendEnrollment(doc, req.StudentID, req.CourseID, nowUTC())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListForStudent returns the student's active enrollments with course details.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID int) ([]models.EnrollmentDetail, error) {
	result := make([]models.EnrollmentDetail, 0)
	s.store.Read(func(doc *models.Document) {
		for _, e := range doc.Enrollments {
			if e.StudentID != studentID || e.Status != models.StatusActive {
				continue
			}
			detail := models.EnrollmentDetail{
				Enrollment:     e,
				CourseName:     models.UnknownName,
				CourseLineName: models.UnknownName,
				ProfessorName:  models.UnassignedProfessor,
			}
			if course := doc.FindCourse(e.CourseID); course != nil {
				detail.CourseName = course.Name
				detail.CourseLineName = courseLineName(doc, course.CourseLineID)
				detail.ProfessorName = professorName(doc, course.ProfessorID)
				detail.Schedule = course.Schedule
				detail.Classroom = course.Classroom
			}
			result = append(result, detail)
		}
	})
	return result, nil
}

// ListStudentsInCourse returns the active enrollments of a course with student data and grades.
func (s *EnrollmentService) ListStudentsInCourse(ctx context.Context, courseID int) ([]models.CourseStudent, error) {
	result := make([]models.CourseStudent, 0)
	s.store.Read(func(doc *models.Document) {
		for _, e := range doc.Enrollments {
			if e.CourseID != courseID || e.Status != models.StatusActive {
				continue
			}
			student := models.CourseStudent{Enrollment: e, Grades: gradesFor(doc, e.StudentID, courseID)}
			if u := doc.FindUser(e.StudentID); u != nil {
				student.Name = u.Name
				student.Code = u.Code
				student.Email = u.Email
				student.Program = u.Program
			}
			result = append(result, student)
		}
	})
	return result, nil
}

func appendEnrollment(doc *models.Document, studentID, courseID int, at time.Time) models.Enrollment {
	e := models.Enrollment{
		ID:         models.NextID(doc.Enrollments, func(e models.Enrollment) int { return e.ID }),
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: at,
		Status:     models.StatusActive,
	}
	doc.Enrollments = append(doc.Enrollments, e)
	return e
}

func gradesFor(doc *models.Document, studentID, courseID int) []models.Grade {
	grades := make([]models.Grade, 0)
	for _, g := range doc.Grades {
		if g.StudentID == studentID && g.CourseID == courseID {
			grades = append(grades, g)
		}
	}
	return grades
}
