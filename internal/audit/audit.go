// Package audit writes moderation and order-lifecycle audit rows. Recording
// is best effort: a failed write is logged server-side and never fails the
// primary request.
package audit

import (
	"context"

	"github.com/nxough-jxhn/daingGraderWeb/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Entry struct {
	Actor    string
	ActorID  uint
	Role     models.Role
	Action   string
	Category string
	Entity   string
	EntityID string
	Status   string
	Details  string
	IP       string
}

type Recorder interface {
	Record(ctx context.Context, e Entry)
}

type Logger struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewLogger(db *gorm.DB, log *zap.Logger) *Logger {
	return &Logger{db: db, log: log}
}

func (l *Logger) Record(ctx context.Context, e Entry) {
	if e.Status == "" {
		e.Status = "success"
	}
	row := models.AuditLog{
		Actor:    e.Actor,
		ActorID:  e.ActorID,
		Role:     e.Role,
		Action:   e.Action,
		Category: e.Category,
		Entity:   e.Entity,
		EntityID: e.EntityID,
		Status:   e.Status,
		Details:  e.Details,
		IP:       e.IP,
	}
	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		l.log.Warn("audit write failed",
			zap.String("action", e.Action),
			zap.String("entity_id", e.EntityID),
			zap.Error(err))
	}
}
