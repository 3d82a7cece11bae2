// Package testhelper opens throwaway databases and seeds the collaborator rows
// (organizations, users, projects) that bitácora tests build on.
package testhelper

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/sjperalta/bitacora-api/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupSQLite returns a migrated, private in-memory SQLite database
func SetupSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.New().String())
	db, err := database.Connect(database.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("testhelper: connect sqlite: %v", err)
	}
	db.Logger = db.Logger.LogMode(logger.Silent)

	if err := database.Migrate(context.Background(), db, database.DriverSQLite); err != nil {
		t.Fatalf("testhelper: migrate sqlite: %v", err)
	}

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
