package dto

import "github.com/noah-isme/emphasis-lines-api/internal/models"

// CreateNotificationRequest addresses a message to one user. Kind defaults to info.
type CreateNotificationRequest struct {
	UserID  int                     `json:"user_id" validate:"required,gt=0"`
	Title   string                  `json:"title" validate:"required"`
	Message string                  `json:"message"`
	Kind    models.NotificationKind `json:"kind" validate:"omitempty,oneof=info success error"`
}
