package warning

import (
	"context"
	"fmt"

	"github.com/erp/manufacturing/internal/domain/warning"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AcknowledgeRequest represents a user confirming a warning
type AcknowledgeRequest struct {
	Key    string `json:"key" binding:"required,min=1,max=255"`
	Always bool   `json:"always"`
}

// WarningService checks and records user warning confirmations
type WarningService struct {
	store  warning.Store
	logger *zap.Logger
}

// NewWarningService creates a new WarningService
func NewWarningService(store warning.Store, logger *zap.Logger) *WarningService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarningService{
		store:  store,
		logger: logger,
	}
}

// Check returns true when the user must be warned about key.
// A one-shot acknowledgement is consumed by this call.
func (s *WarningService) Check(ctx context.Context, tenantID, userID uuid.UUID, key string) (bool, error) {
	acknowledged, err := s.store.Consume(ctx, tenantID, userID, key)
	if err != nil {
		return false, fmt.Errorf("failed to check warning %q: %w", key, err)
	}
	return !acknowledged, nil
}

// Acknowledge records that the user confirmed the warning key
func (s *WarningService) Acknowledge(ctx context.Context, tenantID, userID uuid.UUID, req AcknowledgeRequest) error {
	ack, err := warning.NewAcknowledgement(tenantID, userID, req.Key, req.Always)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, ack); err != nil {
		return fmt.Errorf("failed to save warning acknowledgement: %w", err)
	}
	s.logger.Debug("warning acknowledged",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", userID.String()),
		zap.String("key", ack.Key),
		zap.Bool("always", ack.Always),
	)
	return nil
}

var _ warning.Checker = (*WarningService)(nil)
