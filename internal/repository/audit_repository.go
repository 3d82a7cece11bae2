package repository

import (
	"context"

	"github.com/sjperalta/bitacora-api/internal/models"
	"gorm.io/gorm"
)

// AuditRepository stores append-only audit rows
type AuditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	ListByEntity(ctx context.Context, entity string, entityID uint) ([]models.AuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	return conn(ctx, r.db).Create(log).Error
}

func (r *auditRepository) ListByEntity(ctx context.Context, entity string, entityID uint) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := conn(ctx, r.db).
		Where("entity = ? AND entity_id = ?", entity, entityID).
		Order("created_at, id").
		Find(&logs).Error
	return logs, err
}
