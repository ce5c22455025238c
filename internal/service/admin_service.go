package service

import (
	"context"

	"go.uber.org/zap"
)

type resetter interface {
	Reset(ctx context.Context) error
}

// AdminService exposes maintenance operations.
type AdminService struct {
	store  resetter
	logger *zap.Logger
}

// NewAdminService constructs AdminService.
func NewAdminService(store resetter, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{store: store, logger: logger}
}

// ResetAll wipes every collection and reseeds the default users.
func (s *AdminService) ResetAll(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		s.logger.Error("reset failed", zap.Error(err))
		return err
	}
	s.logger.Warn("document reset")
	return nil
}
