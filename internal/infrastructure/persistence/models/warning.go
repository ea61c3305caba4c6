package models

import (
	"time"

	"github.com/erp/manufacturing/internal/domain/warning"
	"github.com/google/uuid"
)

// WarningAcknowledgementModel is the persistence model for user warning acknowledgements
type WarningAcknowledgementModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID  uuid.UUID `gorm:"type:uuid;not null;index:idx_warning_ack_lookup,priority:1"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_warning_ack_lookup,priority:2"`
	Key       string    `gorm:"column:warning_key;type:varchar(255);not null;index:idx_warning_ack_lookup,priority:3"`
	Always    bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WarningAcknowledgementModel) TableName() string {
	return "warning_acknowledgements"
}

// ToDomain converts the persistence model to a domain Acknowledgement
func (m *WarningAcknowledgementModel) ToDomain() *warning.Acknowledgement {
	return &warning.Acknowledgement{
		ID:        m.ID,
		TenantID:  m.TenantID,
		UserID:    m.UserID,
		Key:       m.Key,
		Always:    m.Always,
		CreatedAt: m.CreatedAt,
	}
}

// WarningAcknowledgementModelFromDomain creates a persistence model from a domain Acknowledgement
func WarningAcknowledgementModelFromDomain(a *warning.Acknowledgement) *WarningAcknowledgementModel {
	return &WarningAcknowledgementModel{
		ID:        a.ID,
		TenantID:  a.TenantID,
		UserID:    a.UserID,
		Key:       a.Key,
		Always:    a.Always,
		CreatedAt: a.CreatedAt,
	}
}
