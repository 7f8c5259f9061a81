package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is an append-only record of every mutating operation on the
// financial core. Updates and deletes fail both here and at the database
// (a trigger installed in database.Migrate).
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	EntityType string    `gorm:"size:50;not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   string    `gorm:"size:64;not null;index:idx_audit_entity" json:"entity_id"`
	Action     string    `gorm:"size:100;not null" json:"action"`
	ActorID    string    `gorm:"size:64;not null" json:"actor_id"`
	ActorRole  string    `gorm:"size:20;not null" json:"actor_role"`

	PreviousState *string `gorm:"type:jsonb" json:"previous_state,omitempty"`
	NewState      *string `gorm:"type:jsonb" json:"new_state,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

var ErrAuditLogImmutable = errors.New("audit log entries are append-only")

func (l *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

func (l *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}
