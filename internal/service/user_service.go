package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
)

// UserService exposes read access to accounts. Passwords never leave the service.
type UserService struct {
	store  documentStore
	logger *zap.Logger
}

// NewUserService constructs UserService.
func NewUserService(store documentStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{store: store, logger: logger}
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id int) (*models.User, error) {
	var found *models.User
	s.store.Read(func(doc *models.Document) {
		if u := doc.FindUser(id); u != nil {
			user := u.Public()
			found = &user
		}
	})
	if found == nil {
		return nil, notFound("user not found")
	}
	return found, nil
}

// ListProfessors returns active professors.
func (s *UserService) ListProfessors(ctx context.Context) ([]models.User, error) {
	professors := make([]models.User, 0)
	s.store.Read(func(doc *models.Document) {
		for _, u := range doc.Users {
			if u.Role == models.RoleProfessor && u.Status == models.StatusActive {
				professors = append(professors, u.Public())
			}
		}
	})
	return professors, nil
}
