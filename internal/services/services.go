package services

import (
	"github.com/sjperalta/bitacora-api/internal/bitacora"
	"github.com/sjperalta/bitacora-api/internal/config"
	"github.com/sjperalta/bitacora-api/internal/repository"
)

// Worker is the background queue the services hand jobs to
type Worker interface {
	JobQueue
	StatsSource
}

// Services holds all service instances
type Services struct {
	Access   *AccessService
	Bitacora *BitacoraService
	Entry    *EntryService
	Closure  *ClosureService
	Export   *ExportService
	Email    *EmailService
	Audit    *AuditService
	Job      *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker Worker, store FileStore, cfg *config.Config) *Services {
	return NewServicesWithCalendar(repos, worker, store, cfg, bitacora.NewCalendar(cfg.Location()))
}

// NewServicesWithCalendar is NewServices with an explicit calendar (tests pin its clock)
func NewServicesWithCalendar(repos *repository.Repositories, worker Worker, store FileStore, cfg *config.Config, calendar *bitacora.Calendar) *Services {
	accessSvc := NewAccessService(repos.Membership, repos.Project)
	auditSvc := NewAuditService(repos.Audit)
	bitacoraSvc := NewBitacoraService(accessSvc, repos.Entry, repos.Closure, calendar, cfg)
	closureSvc := NewClosureService(accessSvc, bitacoraSvc, repos, auditSvc, worker, cfg)
	exportSvc := NewExportService(bitacoraSvc, closureSvc, store)
	emailSvc := NewEmailService(cfg, repos.Membership)

	closureSvc.OnClosed(exportSvc.ArchiveClosurePDFJob)
	closureSvc.OnClosedAsync(emailSvc.NotifyDayClosedJob)

	return &Services{
		Access:   accessSvc,
		Bitacora: bitacoraSvc,
		Entry:    NewEntryService(accessSvc, bitacoraSvc, repos, auditSvc, cfg),
		Closure:  closureSvc,
		Export:   exportSvc,
		Email:    emailSvc,
		Audit:    auditSvc,
		Job:      NewJobService(worker),
	}
}
