package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
	"github.com/noah-isme/emphasis-lines-api/internal/store"
	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
)

func TestNotificationsNewestFirst(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewNotificationService(s, nil, nil)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Update(context.Background(), func(doc *models.Document) error {
		doc.Notifications = append(doc.Notifications,
			models.Notification{ID: 1, UserID: 1, Title: "old", CreatedAt: base},
			models.Notification{ID: 2, UserID: 1, Title: "new", CreatedAt: base.Add(time.Hour)},
			models.Notification{ID: 3, UserID: 1, Title: "tie", CreatedAt: base},
			models.Notification{ID: 4, UserID: 2, Title: "other", CreatedAt: base.Add(2 * time.Hour)},
		)
		return nil
	}))

	list, err := svc.ListForUser(context.Background(), 1)
	require.NoError(t, err)
	ids := make([]int, 0, len(list))
	for _, n := range list {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []int{2, 3, 1}, ids)
}

func TestCreateAndMarkRead(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewNotificationService(s, nil, nil)

	created, err := svc.Create(context.Background(), dto.CreateNotificationRequest{UserID: store.SeedStudentID, Title: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationInfo, created.Kind)
	assert.False(t, created.Read)
	_, err = svc.Create(context.Background(), dto.CreateNotificationRequest{UserID: store.SeedStudentID, Title: "Again", Kind: models.NotificationError})
	require.NoError(t, err)

	count, err := svc.UnreadCount(context.Background(), store.SeedStudentID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkRead(context.Background(), created.ID, store.SeedStudentID, models.RoleStudent))
	count, err = svc.UnreadCount(context.Background(), store.SeedStudentID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, svc.MarkRead(context.Background(), 99, store.SeedStudentID, models.RoleStudent), appErrors.ErrNotFound)

	_, err = svc.Create(context.Background(), dto.CreateNotificationRequest{UserID: 1, Title: "x", Kind: "warning"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestMarkReadRequiresRecipientOrCoordinator(t *testing.T) {
	s, _ := newTestStore(t)
	svc := NewNotificationService(s, nil, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, dto.CreateNotificationRequest{UserID: store.SeedStudentID, Title: "Mine"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, dto.CreateNotificationRequest{UserID: store.SeedStudentID, Title: "Also mine"})
	require.NoError(t, err)

	err = svc.MarkRead(ctx, first.ID, store.SeedProfessorID, models.RoleProfessor)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	count, err := svc.UnreadCount(ctx, store.SeedStudentID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkRead(ctx, second.ID, store.SeedCoordinatorID, models.RoleCoordinator))
	count, err = svc.UnreadCount(ctx, store.SeedStudentID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
