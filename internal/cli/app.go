package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sjperalta/bitacora-api/internal/config"
	"github.com/sjperalta/bitacora-api/internal/database"
	"github.com/sjperalta/bitacora-api/internal/jobs"
	"github.com/sjperalta/bitacora-api/internal/repository"
	"github.com/sjperalta/bitacora-api/internal/services"
	"github.com/sjperalta/bitacora-api/internal/storage"
	"github.com/sjperalta/bitacora-api/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// App is the wired service stack a command runs against
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Services *services.Services

	worker *jobs.Worker
}

// openApp loads configuration (flags win over the environment), connects to the
// database and builds the services. Logs go to stderr so they never mix with
// command output.
func openApp(opts *RootOptions, stderr io.Writer) (*App, error) {
	cfg, err := config.LoadWith(func(c *config.Config) {
		if opts.Driver != "" {
			c.DatabaseDriver = strings.ToLower(opts.Driver)
		}
		if opts.DatabaseURL != "" {
			c.DatabaseURL = opts.DatabaseURL
		}
	})
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	logger.SetupTo(stderr, cfg.Environment, level)

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "database unavailable", err)
	}
	if !opts.Verbose {
		db.Logger = db.Logger.LogMode(gormlogger.Silent)
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		_ = database.Close(db)
		return nil, WrapExitError(ExitCommandError, "storage unavailable", err)
	}

	worker := jobs.NewWorker(1)
	return &App{
		Config:   cfg,
		DB:       db,
		Services: services.NewServices(repository.NewRepositories(db), worker, store, cfg),
		worker:   worker,
	}, nil
}

// Close waits for queued jobs and releases the database
func (a *App) Close() {
	a.worker.Shutdown()
	_ = database.Close(a.DB)
}

func parseProjectID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid project id %q", arg))
	}
	return uint(id), nil
}
