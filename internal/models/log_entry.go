package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry source constants
const (
	EntrySourceIncident = "INCIDENT"
	EntrySourceManual   = "MANUAL"
	EntrySourceMobile   = "MOBILE"
	EntrySourceSystem   = "SYSTEM"
)

// EntrySources is the canonical section order of the official document
var EntrySources = []string{
	EntrySourceIncident,
	EntrySourceManual,
	EntrySourceMobile,
	EntrySourceSystem,
}

// IsValidEntrySource checks a source string against the known set
func IsValidEntrySource(source string) bool {
	for _, s := range EntrySources {
		if s == source {
			return true
		}
	}
	return false
}

// LogEntry is one event recorded in a project's bitácora
type LogEntry struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	GUID           string                      `gorm:"column:guid;size:36;not null;uniqueIndex" json:"guid"`
	OrganizationID uint                        `gorm:"not null;index" json:"organization_id"`
	ProjectID      uint                        `gorm:"not null;index:idx_log_entries_project_created,priority:1" json:"project_id"`
	Source         string                      `gorm:"size:16;not null" json:"source"`
	Title          *string                     `gorm:"size:200" json:"title"`
	Content        string                      `gorm:"type:text;not null" json:"content"`
	IncidentID     *uint                       `gorm:"index" json:"incident_id,omitempty"`
	Photos         datatypes.JSONSlice[string] `json:"photos"`
	CreatedBy      uint                        `gorm:"not null" json:"created_by"`
	IsLocked       bool                        `gorm:"not null;default:false" json:"is_locked"`
	LockedAt       *time.Time                  `json:"locked_at"`
	LockedBy       *uint                       `json:"locked_by"`
	CreatedAt      time.Time                   `gorm:"not null;index:idx_log_entries_project_created,priority:2" json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`

	// Associations
	Author   User      `gorm:"foreignKey:CreatedBy" json:"-"`
	Incident *Incident `gorm:"foreignKey:IncidentID" json:"-"`
}

// TableName specifies the table name for LogEntry
func (LogEntry) TableName() string {
	return "log_entries"
}

// BeforeCreate assigns the public identifier
func (e *LogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.GUID == "" {
		e.GUID = uuid.New().String()
	}
	return nil
}

// PhotoCount returns how many photos are attached to the entry
func (e *LogEntry) PhotoCount() int {
	return len(e.Photos)
}

// TitleOrEmpty returns the title or "" when absent
func (e *LogEntry) TitleOrEmpty() string {
	if e.Title == nil {
		return ""
	}
	return *e.Title
}

// LogEntryResponse is the JSON response format for log entries
type LogEntryResponse struct {
	ID         uint       `json:"id"`
	GUID       string     `json:"guid"`
	ProjectID  uint       `json:"project_id"`
	Source     string     `json:"source"`
	Title      *string    `json:"title"`
	Content    string     `json:"content"`
	IncidentID *uint      `json:"incident_id,omitempty"`
	Photos     []string   `json:"photos"`
	PhotoCount int        `json:"photo_count"`
	CreatedBy  uint       `json:"created_by"`
	AuthorName string     `json:"author_name"`
	IsLocked   bool       `json:"is_locked"`
	LockedAt   *time.Time `json:"locked_at"`
	LockedBy   *uint      `json:"locked_by"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ToResponse converts LogEntry to LogEntryResponse
func (e *LogEntry) ToResponse() LogEntryResponse {
	photos := []string(e.Photos)
	if photos == nil {
		photos = []string{}
	}
	return LogEntryResponse{
		ID:         e.ID,
		GUID:       e.GUID,
		ProjectID:  e.ProjectID,
		Source:     e.Source,
		Title:      e.Title,
		Content:    e.Content,
		IncidentID: e.IncidentID,
		Photos:     photos,
		PhotoCount: e.PhotoCount(),
		CreatedBy:  e.CreatedBy,
		AuthorName: e.Author.DisplayName(),
		IsLocked:   e.IsLocked,
		LockedAt:   e.LockedAt,
		LockedBy:   e.LockedBy,
		CreatedAt:  e.CreatedAt,
	}
}
