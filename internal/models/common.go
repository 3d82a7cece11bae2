package models

// Pagination is the metadata returned with paginated lists
type Pagination struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
}

// AllModels lists every table managed by this service, in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&Organization{},
		&User{},
		&OrganizationMember{},
		&Project{},
		&Incident{},
		&LogEntry{},
		&DayClosure{},
		&AuditLog{},
	}
}
