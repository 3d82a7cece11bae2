package repository

import (
	"context"
	"fmt"

	"github.com/sjperalta/bitacora-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClosureRepository defines the interface for day closure data access.
// Closures are append-only: there is no update or delete.
type ClosureRepository interface {
	Create(ctx context.Context, closure *models.DayClosure) error
	Exists(ctx context.Context, projectID uint, date datatypes.Date) (bool, error)
	FindByDate(ctx context.Context, projectID uint, date datatypes.Date) (*models.DayClosure, error)
	ListByProject(ctx context.Context, projectID uint, query *ListQuery) ([]models.DayClosure, int64, error)
	FindClosedSince(ctx context.Context, since datatypes.Date) ([]models.DayClosure, error)
	CountByProject(ctx context.Context, projectID uint) (int64, error)
	FindLatest(ctx context.Context, projectID uint) (*models.DayClosure, error)
}

type closureRepository struct {
	db *gorm.DB
}

// NewClosureRepository creates a new closure repository
func NewClosureRepository(db *gorm.DB) ClosureRepository {
	return &closureRepository{db: db}
}

// Create inserts the closure. A second closure for the same project and date
// fails on the unique constraint and is reported as ErrDuplicate.
func (r *closureRepository) Create(ctx context.Context, closure *models.DayClosure) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(closure).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return err
	}
	return nil
}

func (r *closureRepository) Exists(ctx context.Context, projectID uint, date datatypes.Date) (bool, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.DayClosure{}).
		Where("project_id = ? AND closure_date = ?", projectID, date).
		Count(&count).Error
	return count > 0, err
}

func (r *closureRepository) FindByDate(ctx context.Context, projectID uint, date datatypes.Date) (*models.DayClosure, error) {
	var closure models.DayClosure
	err := conn(ctx, r.db).
		Preload("Closer").
		Where("project_id = ? AND closure_date = ?", projectID, date).
		First(&closure).Error
	if err != nil {
		return nil, err
	}
	return &closure, nil
}

func (r *closureRepository) ListByProject(ctx context.Context, projectID uint, query *ListQuery) ([]models.DayClosure, int64, error) {
	var closures []models.DayClosure
	var total int64

	db := conn(ctx, r.db).Model(&models.DayClosure{}).Where("project_id = ?", projectID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "closure_date DESC"
	if query.SortDir == "asc" {
		order = "closure_date ASC"
	}
	db = db.Preload("Closer").Omit("official_content").Order(order)

	// Apply pagination
	if query.PerPage > 0 {
		db = db.Offset(query.offset()).Limit(query.PerPage)
	}

	err := db.Find(&closures).Error
	return closures, total, err
}

// FindClosedSince returns the identity of every closure dated on or after since
func (r *closureRepository) FindClosedSince(ctx context.Context, since datatypes.Date) ([]models.DayClosure, error) {
	var closures []models.DayClosure
	err := conn(ctx, r.db).
		Select("id", "guid", "organization_id", "project_id", "closure_date", "closed_by", "closed_at").
		Where("closure_date >= ?", since).
		Order("closure_date, project_id").
		Find(&closures).Error
	return closures, err
}

func (r *closureRepository) CountByProject(ctx context.Context, projectID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).
		Model(&models.DayClosure{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

func (r *closureRepository) FindLatest(ctx context.Context, projectID uint) (*models.DayClosure, error) {
	var closure models.DayClosure
	err := conn(ctx, r.db).
		Omit("official_content").
		Where("project_id = ?", projectID).
		Order("closure_date DESC").
		First(&closure).Error
	if err != nil {
		return nil, err
	}
	return &closure, nil
}
