package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lifelink-health/portal/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type auditLogModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID   string    `gorm:"uniqueIndex"`
	EventType string    `gorm:"index"`
	Source    string
	Actor     string            `gorm:"index"`
	Payload   datatypes.JSONMap `gorm:"type:jsonb"`
	EmittedAt time.Time
	CreatedAt time.Time
}

func (auditLogModel) TableName() string {
	return "audit_logs"
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&auditLogModel{})
}

// Record persists a consumed audit event. Duplicate event IDs are ignored so
// redelivered messages stay idempotent.
func (r *Repository) Record(ctx context.Context, event models.Event) error {
	row := auditLogModel{
		ID:        uuid.New(),
		EventID:   event.ID,
		EventType: event.Type,
		Source:    event.Source,
		Actor:     event.Actor,
		Payload:   datatypes.JSONMap(event.Data),
		EmittedAt: event.Timestamp,
		CreatedAt: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

type AuditLog struct {
	ID        uuid.UUID              `json:"id"`
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	Source    string                 `json:"source"`
	Actor     string                 `json:"actor"`
	Payload   map[string]interface{} `json:"payload"`
	EmittedAt time.Time              `json:"emitted_at"`
}

func (r *Repository) List(ctx context.Context, limit int) ([]AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var rows []auditLogModel
	if err := r.db.WithContext(ctx).Order("emitted_at desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	logs := make([]AuditLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, AuditLog{
			ID:        row.ID,
			EventID:   row.EventID,
			EventType: row.EventType,
			Source:    row.Source,
			Actor:     row.Actor,
			Payload:   row.Payload,
			EmittedAt: row.EmittedAt,
		})
	}
	return logs, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key")
}
