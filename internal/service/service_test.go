package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
	"github.com/noah-isme/emphasis-lines-api/internal/repository"
	"github.com/noah-isme/emphasis-lines-api/internal/store"
)

func newTestStore(t *testing.T) (*store.Store, *repository.MemoryDocumentRepository) {
	t.Helper()
	backend := repository.NewMemoryDocumentRepository()
	s := store.New(backend)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Close)
	return s, backend
}

func snapshot(s *store.Store) *models.Document {
	return store.View(s, func(doc *models.Document) *models.Document { return doc.Clone() })
}

func createLine(t *testing.T, s *store.Store, code string, seats int) *models.CourseLine {
	t.Helper()
	svc := NewCourseLineService(s, nil, nil, "")
	line, err := svc.Create(context.Background(), dto.CreateCourseLineRequest{
		Code:        code,
		Name:        "Line " + code,
		Program:     "Ingeniería de Sistemas",
		TotalSeats:  seats,
		Modality:    "presencial",
		Credits:     3,
		Schedule:    "Mon 8-10",
		Classroom:   "B-201",
		ProfessorID: store.SeedProfessorID,
	})
	require.NoError(t, err)
	return line
}

func courseOf(doc *models.Document, lineID int) *models.Course {
	for i := range doc.Courses {
		if doc.Courses[i].CourseLineID == lineID {
			return &doc.Courses[i]
		}
	}
	return nil
}

func notificationsFor(doc *models.Document, userID int) []models.Notification {
	var out []models.Notification
	for _, n := range doc.Notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}
