package models

import (
	"time"
)

// Project represents a construction project (managed outside this service)
type Project struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	Name           string    `gorm:"not null" json:"name"`
	Location       string    `gorm:"not null;default:''" json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// ProjectResponse is the JSON response format for projects
type ProjectResponse struct {
	ID             uint   `json:"id"`
	OrganizationID uint   `json:"organization_id"`
	Name           string `json:"name"`
	Location       string `json:"location"`
}

// ToResponse converts Project to ProjectResponse
func (p *Project) ToResponse() ProjectResponse {
	return ProjectResponse{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		Name:           p.Name,
		Location:       p.Location,
	}
}

// Incident is the read-only part of an incident that log entries may point back to
type Incident struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	ProjectID      uint      `gorm:"not null;index" json:"project_id"`
	Title          string    `gorm:"not null" json:"title"`
	Severity       string    `gorm:"size:20" json:"severity"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for Incident
func (Incident) TableName() string {
	return "incidents"
}
