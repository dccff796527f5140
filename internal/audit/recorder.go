package audit

import (
	"context"
	"encoding/json"
	"time"

	"rental-billing-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recorder is the audit sink every cancel, void, extend-due, and
// acknowledge action reports to.
type Recorder interface {
	Record(ctx context.Context, db *gorm.DB, actorID, action, subjectID, reason string, meta map[string]any) error
}

// DBRecorder writes audit rows through the caller's transaction so an
// audit entry never survives a rolled-back action.
type DBRecorder struct {
	log *zap.Logger
}

func NewDBRecorder(log *zap.Logger) *DBRecorder {
	return &DBRecorder{log: log}
}

func (r *DBRecorder) Record(ctx context.Context, db *gorm.DB, actorID, action, subjectID, reason string, meta map[string]any) error {
	entry := models.AuditLog{
		ID:        uuid.New(),
		ActorID:   actorID,
		Action:    action,
		SubjectID: subjectID,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		entry.Metadata = datatypes.JSON(raw)
	}
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		return err
	}
	r.log.Info("audit",
		zap.String("actor", actorID),
		zap.String("action", action),
		zap.String("subject", subjectID),
	)
	return nil
}
