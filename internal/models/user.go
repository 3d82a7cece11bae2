package models

import (
	"time"
)

// User is the read-only view of an account owned by the identity provider
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName  string    `gorm:"not null" json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// DisplayName returns the name printed in the official document
func (u *User) DisplayName() string {
	if u == nil || u.ID == 0 {
		return "Usuario desconocido"
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// Organization is a tenant: it owns projects and members
type Organization struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Organization
func (Organization) TableName() string {
	return "organizations"
}

// Member roles
const (
	MemberRoleAdmin      = "admin"
	MemberRoleResident   = "resident"
	MemberRoleSupervisor = "supervisor"
	MemberRoleViewer     = "viewer"
)

// OrganizationMember links a user to the organization they act for
type OrganizationMember struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	UserID         uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Role           string    `gorm:"size:20;not null;default:resident" json:"role"`
	CreatedAt      time.Time `json:"created_at"`

	// Associations
	User         User         `gorm:"foreignKey:UserID" json:"-"`
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

// TableName specifies the table name for OrganizationMember
func (OrganizationMember) TableName() string {
	return "organization_members"
}

// CanWrite reports whether the role may author entries or close days
func (m *OrganizationMember) CanWrite() bool {
	return m.Role != MemberRoleViewer
}
