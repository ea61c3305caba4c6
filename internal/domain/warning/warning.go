package warning

import (
	"context"
	"strings"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/google/uuid"
)

// Acknowledgement records that a user confirmed a warning key.
// A permanent (Always) acknowledgement silences the key for good;
// otherwise it is consumed by the next check.
type Acknowledgement struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	UserID    uuid.UUID
	Key       string
	Always    bool
	CreatedAt time.Time
}

// NewAcknowledgement creates a new acknowledgement
func NewAcknowledgement(tenantID, userID uuid.UUID, key string, always bool) (*Acknowledgement, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, shared.NewDomainError("INVALID_WARNING_KEY", "Warning key cannot be empty")
	}
	if len(key) > 255 {
		return nil, shared.NewDomainError("INVALID_WARNING_KEY", "Warning key cannot exceed 255 characters")
	}
	return &Acknowledgement{
		ID:        uuid.New(),
		TenantID:  tenantID,
		UserID:    userID,
		Key:       key,
		Always:    always,
		CreatedAt: time.Now(),
	}, nil
}

// Store persists warning acknowledgements
type Store interface {
	// Save records an acknowledgement
	Save(ctx context.Context, ack *Acknowledgement) error

	// Consume reports whether the user acknowledged key.
	// Non-permanent acknowledgements are removed.
	Consume(ctx context.Context, tenantID, userID uuid.UUID, key string) (bool, error)
}

// Checker decides whether a warning must be raised
type Checker interface {
	// Check returns true when the user has not acknowledged key and must be warned
	Check(ctx context.Context, tenantID, userID uuid.UUID, key string) (bool, error)
}
