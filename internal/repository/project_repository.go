package repository

import (
	"context"

	"github.com/sjperalta/bitacora-api/internal/models"
	"gorm.io/gorm"
)

// ProjectRepository reads projects and incidents owned by other services
type ProjectRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Project, error)
	FindIncident(ctx context.Context, projectID, incidentID uint) (*models.Incident, error)
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) FindByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := conn(ctx, r.db).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindIncident(ctx context.Context, projectID, incidentID uint) (*models.Incident, error) {
	var incident models.Incident
	err := conn(ctx, r.db).
		Where("project_id = ?", projectID).
		First(&incident, incidentID).Error
	if err != nil {
		return nil, err
	}
	return &incident, nil
}
