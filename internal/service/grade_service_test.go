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

type gradeFixture struct {
	store       *store.Store
	grades      *GradeService
	evaluations *EvaluationService
	courseID    int
	partial     *models.Evaluation
	final       *models.Evaluation
}

func newGradeFixture(t *testing.T, enroll bool) gradeFixture {
	t.Helper()
	s, _ := newTestStore(t)
	line := createLine(t, s, "A", 5)
	courseID := courseOf(snapshot(s), line.ID).ID
	if enroll {
		_, err := NewEnrollmentService(s, nil, nil).Enroll(context.Background(), dto.EnrollStudentRequest{StudentID: store.SeedStudentID, CourseID: courseID})
		require.NoError(t, err)
	}
	evaluations := NewEvaluationService(s, nil, nil)
	partial, err := evaluations.Create(context.Background(), dto.CreateEvaluationRequest{CourseID: courseID, Name: "Partial", WeightPercent: 40})
	require.NoError(t, err)
	final, err := evaluations.Create(context.Background(), dto.CreateEvaluationRequest{CourseID: courseID, Name: "Final", WeightPercent: 60})
	require.NoError(t, err)
	return gradeFixture{
		store:       s,
		grades:      NewGradeService(s, nil, nil),
		evaluations: evaluations,
		courseID:    courseID,
		partial:     partial,
		final:       final,
	}
}

func (f gradeFixture) record(t *testing.T, evaluationID int, value float64) *models.Grade {
	t.Helper()
	g, err := f.grades.Record(context.Background(), dto.RecordGradeRequest{
		EvaluationID: evaluationID,
		StudentID:    store.SeedStudentID,
		CourseID:     f.courseID,
		Value:        value,
	})
	require.NoError(t, err)
	return g
}

func TestRecordGradeComputesWeightedFinal(t *testing.T) {
	f := newGradeFixture(t, true)
	f.record(t, f.partial.ID, 3.0)
	f.record(t, f.final.ID, 4.0)

	doc := snapshot(f.store)
	require.Len(t, doc.Enrollments, 1)
	require.NotNil(t, doc.Enrollments[0].FinalGrade)
	assert.InDelta(t, 3.6, *doc.Enrollments[0].FinalGrade, 1e-9)

	value, err := f.grades.ComputeFinalGrade(context.Background(), store.SeedStudentID, f.courseID)
	require.NoError(t, err)
	assert.InDelta(t, 3.6, value, 1e-9)
}

func TestRecordGradeUpserts(t *testing.T) {
	f := newGradeFixture(t, true)
	first := f.record(t, f.partial.ID, 2.0)
	second := f.record(t, f.partial.ID, 5.0)
	assert.Equal(t, first.ID, second.ID)

	grades, err := f.grades.ListForStudentCourse(context.Background(), store.SeedStudentID, f.courseID)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 5.0, grades[0].Value)

	doc := snapshot(f.store)
	assert.InDelta(t, 2.0, *doc.Enrollments[0].FinalGrade, 1e-9)
}

func TestComputeFinalGradeWithoutEnrollmentDoesNotSave(t *testing.T) {
	f := newGradeFixture(t, false)
	f.record(t, f.final.ID, 5.0)
	revision := f.store.Revision()

	value, err := f.grades.ComputeFinalGrade(context.Background(), store.SeedStudentID, f.courseID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, value, 1e-9)
	assert.Equal(t, revision, f.store.Revision())

	none, err := f.grades.ComputeFinalGrade(context.Background(), 77, f.courseID)
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestRecordGradeValidates(t *testing.T) {
	f := newGradeFixture(t, true)
	_, err := f.grades.Record(context.Background(), dto.RecordGradeRequest{EvaluationID: f.partial.ID, StudentID: store.SeedStudentID, CourseID: f.courseID, Value: -1})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestDeleteEvaluationCascadesGrades(t *testing.T) {
	f := newGradeFixture(t, true)
	f.record(t, f.partial.ID, 3.0)
	kept := f.record(t, f.final.ID, 4.0)

	require.NoError(t, f.evaluations.Delete(context.Background(), f.partial.ID))

	doc := snapshot(f.store)
	require.Len(t, doc.Grades, 1)
	assert.Equal(t, kept.ID, doc.Grades[0].ID)
	require.Len(t, doc.Evaluations, 1)
	assert.Equal(t, f.final.ID, doc.Evaluations[0].ID)

	assert.ErrorIs(t, f.evaluations.Delete(context.Background(), f.partial.ID), appErrors.ErrNotFound)
}

func TestDeletedHighestEvaluationIDIsReusedWithoutGrades(t *testing.T) {
	f := newGradeFixture(t, true)
	f.record(t, f.final.ID, 4.0)
	require.Greater(t, f.final.ID, f.partial.ID)

	require.NoError(t, f.evaluations.Delete(context.Background(), f.final.ID))
	created, err := f.evaluations.Create(context.Background(), dto.CreateEvaluationRequest{
		CourseID: f.courseID, Name: "Retake", WeightPercent: 60,
	})
	require.NoError(t, err)
	assert.Equal(t, f.final.ID, created.ID)

	doc := snapshot(f.store)
	for _, g := range doc.Grades {
		assert.NotEqual(t, created.ID, g.EvaluationID)
	}
}

func TestEvaluationUpdateAndList(t *testing.T) {
	f := newGradeFixture(t, false)
	weight := 50.0
	updated, err := f.evaluations.Update(context.Background(), f.final.ID, dto.EvaluationPatch{WeightPercent: &weight})
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Name)
	assert.Equal(t, 50.0, updated.WeightPercent)

	list, err := f.evaluations.ListForCourse(context.Background(), f.courseID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := f.evaluations.Get(context.Background(), f.final.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated, *got)

	_, err = f.evaluations.Update(context.Background(), 99, dto.EvaluationPatch{WeightPercent: &weight})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRecordGradeUpsertKeepsCourse(t *testing.T) {
	f := newGradeFixture(t, true)
	f.record(t, f.partial.ID, 3.0)

	moved, err := f.grades.Record(context.Background(), dto.RecordGradeRequest{
		EvaluationID: f.partial.ID,
		StudentID:    store.SeedStudentID,
		CourseID:     f.courseID + 100,
		Value:        5.0,
	})
	require.NoError(t, err)
	assert.Equal(t, f.courseID, moved.CourseID)
	assert.InDelta(t, 5.0, moved.Value, 1e-9)

	doc := snapshot(f.store)
	require.Len(t, doc.Grades, 1)
	assert.Equal(t, f.courseID, doc.Grades[0].CourseID)
	require.NotNil(t, doc.Enrollments[0].FinalGrade)
	assert.InDelta(t, 2.0, *doc.Enrollments[0].FinalGrade, 1e-9)
}
