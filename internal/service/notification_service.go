package service

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/dto"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
)

// NotificationService manages per-user notifications.
type NotificationService struct {
	store     documentStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs NotificationService.
func NewNotificationService(store documentStore, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, validator: validate, logger: logger}
}

// Create stores an unread notification.
func (s *NotificationService) Create(ctx context.Context, req dto.CreateNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid notification payload")
	}
	kind := req.Kind
	if kind == "" {
		kind = models.NotificationInfo
	}
	var created models.Notification
	err := s.store.Update(ctx, func(doc *models.Document) error {
		created = appendNotification(doc, req.UserID, req.Title, req.Message, kind)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID int) ([]models.Notification, error) {
	result := make([]models.Notification, 0)
	s.store.Read(func(doc *models.Document) {
		for _, n := range doc.Notifications {
			if n.UserID == userID {
				result = append(result, n)
			}
		}
	})
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// MarkRead flags a notification as read. Only its recipient or a coordinator may do so.
func (s *NotificationService) MarkRead(ctx context.Context, id, readerID int, role models.UserRole) error {
	return s.store.Update(ctx, func(doc *models.Document) error {
		n := doc.FindNotification(id)
		if n == nil {
			return notFound("notification not found")
		}
		if n.UserID != readerID && role != models.RoleCoordinator {
			return appErrors.ErrForbidden
		}
		n.Read = true
		return nil
	})
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int) (int, error) {
	count := 0
	s.store.Read(func(doc *models.Document) {
		for _, n := range doc.Notifications {
			if n.UserID == userID && !n.Read {
				count++
			}
		}
	})
	return count, nil
}

func appendNotification(doc *models.Document, userID int, title, message string, kind models.NotificationKind) models.Notification {
	n := models.Notification{
		ID:        models.NextID(doc.Notifications, func(n models.Notification) int { return n.ID }),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Kind:      kind,
		CreatedAt: nowUTC(),
	}
	doc.Notifications = append(doc.Notifications, n)
	return n
}
