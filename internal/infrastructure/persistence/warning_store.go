package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/manufacturing/internal/domain/warning"
	"github.com/erp/manufacturing/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWarningStore keeps warning acknowledgements in the database
type GormWarningStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewGormWarningStore creates a store. Non-permanent acknowledgements older
// than ttl are ignored; zero keeps them until consumed.
func NewGormWarningStore(db *gorm.DB, ttl time.Duration) *GormWarningStore {
	return &GormWarningStore{db: db, ttl: ttl}
}

// Save records an acknowledgement
func (s *GormWarningStore) Save(ctx context.Context, ack *warning.Acknowledgement) error {
	return s.db.WithContext(ctx).Create(models.WarningAcknowledgementModelFromDomain(ack)).Error
}

// Consume reports whether the user acknowledged key, deleting a non-permanent acknowledgement
func (s *GormWarningStore) Consume(ctx context.Context, tenantID, userID uuid.UUID, key string) (bool, error) {
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("tenant_id = ? AND user_id = ? AND warning_key = ?", tenantID, userID, key)
		if s.ttl > 0 {
			query = query.Where("always = ? OR created_at >= ?", true, time.Now().Add(-s.ttl))
		}

		var ack models.WarningAcknowledgementModel
		if err := query.Order("always DESC, created_at ASC").First(&ack).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		found = true
		if ack.Always {
			return nil
		}
		return tx.Delete(&ack).Error
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// PurgeExpired deletes non-permanent acknowledgements older than the store ttl
// and returns how many were removed
func (s *GormWarningStore) PurgeExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).
		Where("always = ? AND created_at < ?", false, time.Now().Add(-s.ttl)).
		Delete(&models.WarningAcknowledgementModel{})
	return result.RowsAffected, result.Error
}

var _ warning.Store = (*GormWarningStore)(nil)
