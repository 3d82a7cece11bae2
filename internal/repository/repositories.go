package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Project    ProjectRepository
	Membership MembershipRepository
	Entry      EntryRepository
	Closure    ClosureRepository
	Audit      AuditRepository
	Tx         *TxManager
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Project:    NewProjectRepository(db),
		Membership: NewMembershipRepository(db),
		Entry:      NewEntryRepository(db),
		Closure:    NewClosureRepository(db),
		Audit:      NewAuditRepository(db),
		Tx:         NewTxManager(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	SortDir string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
	}
}

func (q *ListQuery) offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}
