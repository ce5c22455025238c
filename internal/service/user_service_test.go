package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
	"github.com/noah-isme/emphasis-lines-api/internal/store"
	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
)

func TestUserServiceGet(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewUserService(s, nil)

	user, err := svc.Get(context.Background(), store.SeedStudentID)
	require.NoError(t, err)
	assert.Equal(t, "EST001", user.Code)
	assert.Empty(t, user.Password)

	_, err = svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestListProfessorsOnlyActive(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Update(context.Background(), func(doc *models.Document) error {
		doc.Users = append(doc.Users, models.User{ID: 4, Code: "PROF002", Name: "Retired", Role: models.RoleProfessor, Status: models.StatusInactive})
		return nil
	}))

	professors, err := NewUserService(s, nil).ListProfessors(context.Background())
	require.NoError(t, err)
	require.Len(t, professors, 1)
	assert.Equal(t, store.SeedProfessorID, professors[0].ID)
	assert.Empty(t, professors[0].Password)
}
