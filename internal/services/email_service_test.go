package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/bitacora-api/internal/config"
	"github.com/sjperalta/bitacora-api/internal/database/testhelper"
	"github.com/sjperalta/bitacora-api/internal/jobs"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type recordingSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (s *recordingSender) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, params)
	return &resend.SendEmailResponse{Id: "test"}, nil
}

func TestEmailService_checkEmailPreconditions(t *testing.T) {
	user := &models.User{Email: "test@example.com", FullName: "Test User", ID: 1}

	// Not configured: silently skipped
	service := NewEmailService(&config.Config{}, nil)
	ok, err := service.checkEmailPreconditions(user, "test operation")
	assert.False(t, ok, "Should return false when Resend is not configured")
	assert.Nil(t, err, "Should not return error when Resend is not configured")

	// Configured and valid
	cfg := &config.Config{ResendAPIKey: "test_key", FromEmail: "from@example.com"}
	service = NewEmailService(cfg, nil)
	ok, err = service.checkEmailPreconditions(user, "test operation")
	assert.True(t, ok)
	assert.Nil(t, err)

	// Invalid recipient
	ok, err = service.checkEmailPreconditions(&models.User{ID: 2, FullName: "Sin correo"}, "test operation")
	assert.False(t, ok)
	assert.EqualError(t, err, "email address is empty")
}

func TestEmailService_SendDayClosed(t *testing.T) {
	cfg := testConfig()
	cfg.ResendAPIKey = "test_key"
	cfg.FromEmail = "bitacora@example.com"
	cfg.PublicAppURL = "https://app.example.com"

	sender := &recordingSender{}
	service := NewEmailService(cfg, nil)
	service.sender = sender

	project := &models.Project{ID: 3, Name: "Torre Reforma 222"}
	closure := &models.DayClosure{
		GUID:        "folio-1",
		ProjectID:   3,
		ClosureDate: datatypes.Date(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)),
		ClosedAt:    fixedNow,
		ContentHash: "abcdef",
		Closer:      models.User{ID: 5, FullName: "Ana López"},
	}
	to := &models.User{ID: 7, Email: "admin@example.com", FullName: "Admin"}

	require.NoError(t, service.SendDayClosed(context.Background(), to, project, closure))
	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, []string{"admin@example.com"}, msg.To)
	assert.Equal(t, "bitacora@example.com", msg.From)
	assert.Equal(t, "Bitácora cerrada: Torre Reforma 222 (2025-03-01)", msg.Subject)
	assert.Contains(t, msg.Html, "folio-1")
	assert.Contains(t, msg.Html, "Ana López")
	assert.Contains(t, msg.Html, "2025-03-01 14:00 CST")
	assert.Contains(t, msg.Html, "https://app.example.com")

	sender.err = errors.New("resend down")
	assert.Error(t, service.SendDayClosed(context.Background(), to, project, closure))
}

func TestEmailService_NotifyDayClosedJobMailsAdmins(t *testing.T) {
	env := newTestEnv(t)
	testhelper.SeedMember(t, env.db, env.f.Org.ID, "Dirección de Obra", models.MemberRoleAdmin)
	testhelper.SeedMember(t, env.db, env.f.OtherOrg.ID, "Admin Ajeno", models.MemberRoleAdmin)

	env.cfg.ResendAPIKey = "test_key"
	env.cfg.FromEmail = "bitacora@example.com"
	sender := &recordingSender{}
	env.svc.Email.sender = sender

	env.closeToday(t)
	env.queue.run(t, jobs.JobNotifyDayClosed)

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Subject, "Torre Reforma 222")
}

func TestEmailService_NotifyDisabledIsNoop(t *testing.T) {
	env := newTestEnv(t)
	testhelper.SeedMember(t, env.db, env.f.Org.ID, "Dirección de Obra", models.MemberRoleAdmin)
	sender := &recordingSender{}
	env.svc.Email.sender = sender

	env.closeToday(t)
	env.queue.run(t, jobs.JobNotifyDayClosed)

	assert.Empty(t, sender.sent)
}
