package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/emphasis-lines-api/pkg/export"
	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
)

func TestCourseRosterCSV(t *testing.T) {
	f := newGradeFixture(t, true)
	f.record(t, f.partial.ID, 3.0)
	f.record(t, f.final.ID, 4.0)
	svc := NewExportService(NewCourseService(f.store, nil, nil, ""), NewEnrollmentService(f.store, nil, nil))

	file, err := svc.CourseRoster(context.Background(), f.courseID, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "roster-A.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Contains(t, string(file.Content), "Code,Name,Email,Program,Enrolled,Final Grade\n")
	assert.Contains(t, string(file.Content), "EST001,Juan Pérez Estudiante,estudiante@udem.edu.co,Ingeniería de Sistemas,")
	assert.Contains(t, string(file.Content), ",3.60\n")
}

func TestCourseRosterPDF(t *testing.T) {
	f := newGradeFixture(t, true)
	svc := NewExportService(NewCourseService(f.store, nil, nil, ""), NewEnrollmentService(f.store, nil, nil))

	file, err := svc.CourseRoster(context.Background(), f.courseID, export.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Content, []byte("%PDF-")))

	_, err = svc.CourseRoster(context.Background(), 404, export.FormatCSV)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
