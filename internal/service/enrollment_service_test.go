package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
	"github.com/noah-isme/emphasis-lines-api/internal/store"
	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
)

func TestEnrollIsUnconditional(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewEnrollmentService(s, nil, nil)
	line := createLine(t, s, "A", 0)
	courseID := courseOf(snapshot(s), line.ID).ID

	for i := 0; i < 2; i++ {
		_, err := svc.Enroll(context.Background(), dto.EnrollStudentRequest{StudentID: store.SeedStudentID, CourseID: courseID})
		require.NoError(t, err)
	}

	doc := snapshot(s)
	assert.Len(t, doc.Enrollments, 2)
	assert.Equal(t, 0, courseOf(doc, line.ID).AvailableSeats)

	_, err := svc.Enroll(context.Background(), dto.EnrollStudentRequest{CourseID: courseID})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestListEnrollmentsForStudent(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewEnrollmentService(s, nil, nil)
	line := createLine(t, s, "A", 5)
	courseID := courseOf(snapshot(s), line.ID).ID
	_, err := svc.Enroll(context.Background(), dto.EnrollStudentRequest{StudentID: store.SeedStudentID, CourseID: courseID})
	require.NoError(t, err)
	_, err = svc.Enroll(context.Background(), dto.EnrollStudentRequest{StudentID: store.SeedStudentID, CourseID: 404})
	require.NoError(t, err)
	dropped, err := svc.Enroll(context.Background(), dto.EnrollStudentRequest{StudentID: store.SeedStudentID, CourseID: courseID})
	require.NoError(t, err)
	require.NoError(t, s.Update(context.Background(), func(doc *models.Document) error {
		doc.Enrollments[dropped.ID-1].Status = models.StatusInactive
		return nil
	}))

	details, err := svc.ListForStudent(context.Background(), store.SeedStudentID)
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, line.Name, details[0].CourseName)
	assert.Equal(t, line.Name, details[0].CourseLineName)
	assert.Equal(t, "Dr. Juan Martínez Profesor", details[0].ProfessorName)
	assert.Equal(t, "Mon 8-10", details[0].Schedule)
	assert.Equal(t, models.UnknownName, details[1].CourseName)
	assert.Equal(t, models.UnassignedProfessor, details[1].ProfessorName)
}

func TestListStudentsInCourse(t *testing.T) {
	f := newGradeFixture(t, true)
	f.record(t, f.partial.ID, 4.5)
	_, err := NewEnrollmentService(f.store, nil, nil).Enroll(context.Background(), dto.EnrollStudentRequest{StudentID: 60, CourseID: f.courseID})
	require.NoError(t, err)

	students, err := NewEnrollmentService(f.store, nil, nil).ListStudentsInCourse(context.Background(), f.courseID)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "EST001", students[0].Code)
	assert.Equal(t, "estudiante@udem.edu.co", students[0].Email)
	require.Len(t, students[0].Grades, 1)
	assert.Equal(t, 4.5, students[0].Grades[0].Value)
	assert.Empty(t, students[1].Name)
	assert.Empty(t, students[1].Grades)
}
