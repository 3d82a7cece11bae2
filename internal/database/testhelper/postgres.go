package testhelper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sjperalta/bitacora-api/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	pgOnce    sync.Once
	pgDSN     string
	pgInitErr error
)

// SetupPostgres starts a shared PostgreSQL container (once per test run), applies
// the goose migrations and returns a gorm connection to it.
func SetupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	pgOnce.Do(func() {
		pgDSN, pgInitErr = startPostgres()
	})
	if pgInitErr != nil {
		t.Fatalf("testhelper: failed to setup postgres: %v", pgInitErr)
	}

	db, err := database.Connect(database.DriverPostgres, pgDSN)
	if err != nil {
		t.Fatalf("testhelper: connect postgres: %v", err)
	}
	db.Logger = db.Logger.LogMode(logger.Silent)

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

func startPostgres() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "bitacora",
			"POSTGRES_PASSWORD": "bitacora",
			"POSTGRES_DB":       "bitacora_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://bitacora:bitacora@%s:%s/bitacora_test?sslmode=disable", host, port.Port())

	db, err := database.Connect(database.DriverPostgres, dsn)
	if err != nil {
		return "", err
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db, database.DriverPostgres); err != nil {
		return "", err
	}
	return dsn, nil
}
