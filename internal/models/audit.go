package models

import (
	"time"
)

// Audit actions
const (
	AuditActionCloseDay    = "CLOSE_DAY"
	AuditActionLockRepair  = "LOCK_REPAIR"
	AuditActionCreateEntry = "CREATE_ENTRY"
	AuditActionUpdateEntry = "UPDATE_ENTRY"
	AuditActionDeleteEntry = "DELETE_ENTRY"
)

// Audit entities
const (
	AuditEntityDayClosure = "DayClosure"
	AuditEntityLogEntry   = "LogEntry"
)

// AuditLog represents an append-only audit entry
type AuditLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	ProjectID      *uint     `gorm:"index" json:"project_id,omitempty"`
	UserID         *uint     `json:"user_id,omitempty"` // nil for background jobs
	Action         string    `gorm:"size:50;not null" json:"action"`
	Entity         string    `gorm:"size:50;not null" json:"entity"`
	EntityID       uint      `json:"entity_id"`
	Details        string    `gorm:"type:text" json:"details"`
	IPAddress      string    `gorm:"size:45" json:"ip_address"`
	UserAgent      string    `gorm:"size:255" json:"user_agent"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
