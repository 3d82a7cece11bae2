package testhelper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/bitacora-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// Fixture is one organization with a resident, a viewer and a project, plus a
// second organization used to check tenant isolation.
type Fixture struct {
	Org          models.Organization
	Resident     models.User
	Viewer       models.User
	Project      models.Project
	OtherOrg     models.Organization
	Outsider     models.User
	OtherProject models.Project
}

// Seed creates a Fixture
func Seed(t *testing.T, db *gorm.DB) Fixture {
	t.Helper()

	var f Fixture
	f.Org = SeedOrganization(t, db, "Constructora Norte")
	f.Resident = SeedMember(t, db, f.Org.ID, "Ana López", models.MemberRoleResident)
	f.Viewer = SeedMember(t, db, f.Org.ID, "Víctor Ruiz", models.MemberRoleViewer)
	f.Project = SeedProject(t, db, f.Org.ID, "Torre Reforma 222", "Av. Reforma 222, CDMX")

	f.OtherOrg = SeedOrganization(t, db, "Constructora Sur")
	f.Outsider = SeedMember(t, db, f.OtherOrg.ID, "Omar Díaz", models.MemberRoleAdmin)
	f.OtherProject = SeedProject(t, db, f.OtherOrg.ID, "Plaza Sur", "")
	return f
}

// SeedOrganization inserts an organization
func SeedOrganization(t *testing.T, db *gorm.DB, name string) models.Organization {
	t.Helper()
	org := models.Organization{Name: name}
	mustCreate(t, db, &org)
	return org
}

// SeedMember inserts a user and makes them a member of organizationID
func SeedMember(t *testing.T, db *gorm.DB, organizationID uint, fullName, role string) models.User {
	t.Helper()
	user := models.User{
		Email:    "user-" + uniqueSuffix() + "@example.com",
		FullName: fullName,
	}
	mustCreate(t, db, &user)
	mustCreate(t, db, &models.OrganizationMember{
		OrganizationID: organizationID,
		UserID:         user.ID,
		Role:           role,
	})
	return user
}

// SeedProject inserts a project
func SeedProject(t *testing.T, db *gorm.DB, organizationID uint, name, location string) models.Project {
	t.Helper()
	project := models.Project{OrganizationID: organizationID, Name: name, Location: location}
	mustCreate(t, db, &project)
	return project
}

// SeedIncident inserts an incident on a project
func SeedIncident(t *testing.T, db *gorm.DB, project models.Project, title string) models.Incident {
	t.Helper()
	incident := models.Incident{
		OrganizationID: project.OrganizationID,
		ProjectID:      project.ID,
		Title:          title,
		Severity:       "high",
	}
	mustCreate(t, db, &incident)
	return incident
}

// SeedEntry inserts a log entry created at the given instant
func SeedEntry(t *testing.T, db *gorm.DB, project models.Project, author models.User, source, content string, createdAt time.Time) models.LogEntry {
	t.Helper()
	entry := models.LogEntry{
		OrganizationID: project.OrganizationID,
		ProjectID:      project.ID,
		Source:         source,
		Content:        content,
		CreatedBy:      author.ID,
		CreatedAt:      createdAt.UTC().Truncate(time.Microsecond),
	}
	mustCreate(t, db, &entry)
	return entry
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Omit(clause.Associations).Create(value).Error; err != nil {
		t.Fatalf("testhelper: insert %T: %v", value, err)
	}
}
