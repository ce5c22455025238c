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

func TestCreateCourseLineCreatesOneCourse(t *testing.T) {
	s, _ := newTestStore(t)
	line := createLine(t, s, "IA-01", 20)

	assert.Equal(t, 1, line.ID)
	assert.Equal(t, 20, line.AvailableSeats)
	assert.Equal(t, models.StatusActive, line.Status)
	assert.Equal(t, 16, line.DurationWeeks)

	doc := snapshot(s)
	require.Len(t, doc.Courses, 1)
	course := doc.Courses[0]
	assert.Equal(t, line.ID, course.CourseLineID)
	assert.Equal(t, "IA-01", course.Code)
	assert.Equal(t, models.DefaultTerm, course.Term)
	assert.Equal(t, 20, course.TotalSeats)
	assert.Equal(t, 20, course.AvailableSeats)
	assert.Equal(t, store.SeedProfessorID, course.ProfessorID)
	assert.Equal(t, "B-201", course.Classroom)
}

func TestCreateCourseLineValidates(t *testing.T) {
	s, backend := newTestStore(t)
	saves := backend.Saves()

	_, err := NewCourseLineService(s, nil, nil, "").Create(context.Background(), dto.CreateCourseLineRequest{Name: "No code"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, saves, backend.Saves())
}

func TestCourseLineIDsNeverReused(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewCourseLineService(s, nil, nil, "")
	first := createLine(t, s, "A", 5)
	require.NoError(t, svc.Deactivate(context.Background(), first.ID))

	second := createLine(t, s, "B", 5)
	assert.Equal(t, 2, second.ID)

	lines, err := svc.List(context.Background(), dto.CourseLineFilter{})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "B", lines[0].Code)

	assert.ErrorIs(t, svc.Deactivate(context.Background(), 99), appErrors.ErrNotFound)
}

func TestListCourseLinesByProgram(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewCourseLineService(s, nil, nil, "")
	createLine(t, s, "A", 5)
	_, err := svc.Create(context.Background(), dto.CreateCourseLineRequest{
		Code:        "B",
		Name:        "Other program",
		Program:     "Ingeniería Civil",
		ProfessorID: 77,
	})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), dto.CourseLineFilter{Program: dto.AllPrograms})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	civil, err := svc.List(context.Background(), dto.CourseLineFilter{Program: "Ingeniería Civil"})
	require.NoError(t, err)
	require.Len(t, civil, 1)
	assert.Equal(t, models.UnassignedProfessor, civil[0].ProfessorName)

	systems, err := svc.List(context.Background(), dto.CourseLineFilter{Program: "Ingeniería de Sistemas"})
	require.NoError(t, err)
	require.Len(t, systems, 1)
	assert.Equal(t, "Dr. Juan Martínez Profesor", systems[0].ProfessorName)
}

func TestUpdateCourseLineMergesPatch(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewCourseLineService(s, nil, nil, "")
	line := createLine(t, s, "A", 5)

	name := "Renamed"
	seats := 2
	updated, err := svc.Update(context.Background(), line.ID, dto.CourseLinePatch{Name: &name, AvailableSeats: &seats})
	require.NoError(t, err)
	assert.Equal(t, line.ID, updated.ID)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 2, updated.AvailableSeats)
	assert.Equal(t, "A", updated.Code)

	got, err := svc.Get(context.Background(), line.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated, *got)

	_, err = svc.Update(context.Background(), 99, dto.CourseLinePatch{Name: &name})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	bad := models.Status("archived")
	_, err = svc.Update(context.Background(), line.ID, dto.CourseLinePatch{Status: &bad})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestCourseServiceListForProfessor(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewCourseService(s, nil, nil, "2026-2")
	line := createLine(t, s, "A", 5)

	standalone, err := svc.Create(context.Background(), dto.CreateCourseRequest{Code: "X", Name: "Loose", ProfessorID: store.SeedProfessorID, TotalSeats: 3})
	require.NoError(t, err)
	assert.Equal(t, "2026-2", standalone.Term)

	_, err = NewEnrollmentService(s, nil, nil).Enroll(context.Background(), dto.EnrollStudentRequest{StudentID: store.SeedStudentID, CourseID: 1})
	require.NoError(t, err)

	courses, err := svc.ListForProfessor(context.Background(), store.SeedProfessorID)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, line.Name, courses[0].CourseLineName)
	assert.Equal(t, 1, courses[0].StudentCount)
	assert.Equal(t, models.GeneralLineName, courses[1].CourseLineName)
	assert.Equal(t, 0, courses[1].StudentCount)

	_, err = svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
