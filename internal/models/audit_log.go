package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is an immutable record of a staff or system action on a billing entity.
type AuditLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID   string         `gorm:"index" json:"actor_id"`
	Action    string         `gorm:"index" json:"action"`
	SubjectID string         `gorm:"index" json:"subject_id"`
	Reason    string         `json:"reason"`
	Metadata  datatypes.JSON `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}
