package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ClosureDateLayout is the wire format of closure dates
const ClosureDateLayout = "2006-01-02"

// ErrClosureImmutable is returned by gorm hooks when something tries to modify a sealed day
var ErrClosureImmutable = errors.New("el cierre de bitácora es inmutable")

// DayClosure seals one calendar day of a project's bitácora.
// Rows are append-only: the repository exposes no update or delete.
type DayClosure struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	GUID            string         `gorm:"column:guid;size:36;not null;uniqueIndex" json:"folio"`
	OrganizationID  uint           `gorm:"not null;index" json:"organization_id"`
	ProjectID       uint           `gorm:"not null;uniqueIndex:uq_day_closures_project_date,priority:1" json:"project_id"`
	ClosureDate     datatypes.Date `gorm:"not null;uniqueIndex:uq_day_closures_project_date,priority:2" json:"closure_date"`
	OfficialContent string         `gorm:"type:text;not null" json:"official_content"`
	ContentHash     string         `gorm:"size:64;not null" json:"content_hash"`
	PinHash         *string        `gorm:"size:100" json:"-"`
	ClosedBy        uint           `gorm:"not null" json:"closed_by"`
	ClosedAt        time.Time      `gorm:"not null" json:"closed_at"`

	// Associations
	Closer User `gorm:"foreignKey:ClosedBy" json:"-"`
}

// TableName specifies the table name for DayClosure
func (DayClosure) TableName() string {
	return "day_closures"
}

// BeforeCreate assigns the public folio
func (c *DayClosure) BeforeCreate(tx *gorm.DB) error {
	if c.GUID == "" {
		c.GUID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate refuses any modification of a sealed day
func (c *DayClosure) BeforeUpdate(tx *gorm.DB) error {
	return ErrClosureImmutable
}

// DateString returns the closure date as YYYY-MM-DD
func (c *DayClosure) DateString() string {
	return time.Time(c.ClosureDate).Format(ClosureDateLayout)
}

// HasPin reports whether a PIN was set when the day was sealed
func (c *DayClosure) HasPin() bool {
	return c.PinHash != nil && *c.PinHash != ""
}

// DayClosureResponse is the JSON response format for closures. The PIN hash is never exposed.
type DayClosureResponse struct {
	ID              uint      `json:"id"`
	Folio           string    `json:"folio"`
	ProjectID       uint      `json:"project_id"`
	ClosureDate     string    `json:"closure_date"`
	OfficialContent string    `json:"official_content,omitempty"`
	ContentHash     string    `json:"content_hash"`
	HasPin          bool      `json:"has_pin"`
	ClosedBy        uint      `json:"closed_by"`
	ClosedByName    string    `json:"closed_by_name"`
	ClosedAt        time.Time `json:"closed_at"`
}

// ToResponse converts DayClosure to DayClosureResponse
func (c *DayClosure) ToResponse(withContent bool) DayClosureResponse {
	resp := DayClosureResponse{
		ID:           c.ID,
		Folio:        c.GUID,
		ProjectID:    c.ProjectID,
		ClosureDate:  c.DateString(),
		ContentHash:  c.ContentHash,
		HasPin:       c.HasPin(),
		ClosedBy:     c.ClosedBy,
		ClosedByName: c.Closer.DisplayName(),
		ClosedAt:     c.ClosedAt,
	}
	if withContent {
		resp.OfficialContent = c.OfficialContent
	}
	return resp
}

// Day lock states. A day never goes back to open once a closure exists.
const (
	DayStateOpen           = "open"
	DayStateClosed         = "closed"
	DayStateLockIncomplete = "lock_incomplete"
)

// DayStatus is the derived (never stored) lock state of one project day
type DayStatus struct {
	ProjectID     uint   `json:"project_id"`
	Date          string `json:"date"`
	State         string `json:"state"`
	UnlockedCount int64  `json:"unlocked_count"`
}

// IsClosed reports whether a closure exists for the day
func (s *DayStatus) IsClosed() bool {
	return s.State == DayStateClosed || s.State == DayStateLockIncomplete
}
