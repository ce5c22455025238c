package service

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
	"github.com/noah-isme/emphasis-lines-api/internal/store"
	appErrors "github.com/noah-isme/emphasis-lines-api/pkg/errors"
)

// documentStore is the part of *store.Store the services depend on.
type documentStore interface {
	Read(fn func(doc *models.Document))
	Update(ctx context.Context, fn store.MutateFunc) error
}

// errNoChange aborts a unit of work that turned out to have nothing to save.
var errNoChange = errors.New("no change")

// update runs fn through the store, treating errNoChange as success.
func update(ctx context.Context, s documentStore, fn store.MutateFunc) error {
	if err := s.Update(ctx, fn); err != nil && !errors.Is(err, errNoChange) {
		return err
	}
	return nil
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func notFound(message string) error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
