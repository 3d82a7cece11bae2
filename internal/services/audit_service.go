package services

import (
	"context"
	"encoding/json"

	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/internal/repository"
	"github.com/sjperalta/bitacora-api/pkg/logger"
)

type clientCtxKey struct{}

type clientInfo struct {
	ip        string
	userAgent string
}

// WithClient stores the caller's address and user agent for audit rows
func WithClient(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientCtxKey{}, clientInfo{ip: ip, userAgent: userAgent})
}

// AuditEvent describes one audited action
type AuditEvent struct {
	OrganizationID uint
	ProjectID      uint
	UserID         *uint // nil for background jobs
	Action         string
	Entity         string
	EntityID       uint
	Details        map[string]interface{}
}

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log records an audit entry. It joins the caller's transaction when there is one.
func (s *AuditService) Log(ctx context.Context, event AuditEvent) error {
	details := ""
	if len(event.Details) > 0 {
		raw, err := json.Marshal(event.Details)
		if err != nil {
			return err
		}
		details = string(raw)
	}

	projectID := event.ProjectID
	logEntry := &models.AuditLog{
		OrganizationID: event.OrganizationID,
		ProjectID:      &projectID,
		UserID:         event.UserID,
		Action:         event.Action,
		Entity:         event.Entity,
		EntityID:       event.EntityID,
		Details:        details,
	}
	if client, ok := ctx.Value(clientCtxKey{}).(clientInfo); ok {
		logEntry.IPAddress = client.ip
		logEntry.UserAgent = client.userAgent
	}
	return s.repo.Create(ctx, logEntry)
}

// LogBestEffort records an audit entry outside of any business transaction;
// failures are logged, never returned.
func (s *AuditService) LogBestEffort(ctx context.Context, event AuditEvent) {
	if err := s.Log(ctx, event); err != nil {
		logger.FromContext(ctx).Error("Failed to write audit log",
			"action", event.Action, "entity", event.Entity, "entity_id", event.EntityID, "error", err)
	}
}

// History lists the audit trail of one entity, oldest first
func (s *AuditService) History(ctx context.Context, entity string, entityID uint) ([]models.AuditLog, error) {
	logs, err := s.repo.ListByEntity(ctx, entity, entityID)
	if err != nil {
		return nil, storageErr("audit_history", err)
	}
	return logs, nil
}

func actorID(a *Actor) *uint {
	if a == nil {
		return nil
	}
	id := a.UserID
	return &id
}
