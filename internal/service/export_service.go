package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/noah-isme/emphasis-lines-api/pkg/export"
)

var rosterColumns = []string{"Code", "Name", "Email", "Program", "Enrolled", "Final Grade"}

// ExportService renders course rosters.
type ExportService struct {
	courses     *CourseService
	enrollments *EnrollmentService
}

// NewExportService constructs ExportService.
func NewExportService(courses *CourseService, enrollments *EnrollmentService) *ExportService {
	return &ExportService{courses: courses, enrollments: enrollments}
}

// RosterFile is a rendered roster ready to be served.
type RosterFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// CourseRoster renders the active students of a course with their final grades.
func (s *ExportService) CourseRoster(ctx context.Context, courseID int, format export.Format) (*RosterFile, error) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	students, err := s.enrollments.ListStudentsInCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title:   fmt.Sprintf("%s %s (%s)", course.Code, course.Name, course.Term),
		Columns: rosterColumns,
		Rows:    make([][]string, 0, len(students)),
	}
	for _, st := range students {
		table.Rows = append(table.Rows, []string{
			st.Code,
			st.Name,
			st.Email,
			st.Program,
			st.EnrolledAt.Format("2006-01-02"),
			formatGrade(st.FinalGrade),
		})
	}

	content, err := export.Render(format, table)
	if err != nil {
		return nil, err
	}
	return &RosterFile{
		Filename:    fmt.Sprintf("roster-%s.%s", course.Code, format),
		ContentType: format.ContentType(),
		Content:     content,
	}, nil
}

func formatGrade(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', 2, 64)
}

