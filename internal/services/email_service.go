package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/bitacora-api/internal/config"
	"github.com/sjperalta/bitacora-api/internal/jobs"
	"github.com/sjperalta/bitacora-api/internal/models"
	"github.com/sjperalta/bitacora-api/internal/repository"
	"github.com/sjperalta/bitacora-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// EmailSender is the part of the Resend client the service uses
type EmailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailService struct {
	config  *config.Config
	sender  EmailSender
	members repository.MembershipRepository
}

func NewEmailService(cfg *config.Config, members repository.MembershipRepository) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config:  cfg,
		sender:  client.Emails,
		members: members,
	}
}

// checkEmailPreconditions reports whether an e-mail can be sent to user. A missing
// configuration is not an error: notifications are optional.
func (s *EmailService) checkEmailPreconditions(user *models.User, operation string) (bool, error) {
	if !s.config.EmailEnabled() {
		logger.Debug("Email disabled, skipping", "operation", operation)
		return false, nil
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		return false, errors.New("email address is empty")
	}
	return true, nil
}

type dayClosedEmail struct {
	Name        string
	ProjectName string
	Date        string
	Folio       string
	ClosedBy    string
	ClosedAt    string
	ContentHash string
	AppURL      string
}

// SendDayClosed tells one recipient that a project day was sealed
func (s *EmailService) SendDayClosed(ctx context.Context, to *models.User, project *models.Project, closure *models.DayClosure) error {
	ok, err := s.checkEmailPreconditions(to, "day closed")
	if !ok {
		return err
	}

	data := dayClosedEmail{
		Name:        to.DisplayName(),
		ProjectName: project.Name,
		Date:        closure.DateString(),
		Folio:       closure.GUID,
		ClosedBy:    closure.Closer.DisplayName(),
		ClosedAt:    closure.ClosedAt.In(s.config.Location()).Format("2006-01-02 15:04 MST"),
		ContentHash: closure.ContentHash,
		AppURL:      s.config.PublicAppURL,
	}

	body, err := s.renderTemplate("day_closed.html", data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Bitácora cerrada: %s (%s)", project.Name, closure.DateString())
	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{to.Email},
		Subject: subject,
		Html:    body,
	}
	if _, err := s.sender.Send(params); err != nil {
		logger.FromContext(ctx).Error("Failed to send email", "to", to.Email, "error", err)
		return err
	}

	logger.FromContext(ctx).Info("Email sent", "to", to.Email, "subject", subject)
	return nil
}

// NotifyDayClosedJob builds the background job that e-mails every organization
// admin about a new closure.
func (s *EmailService) NotifyDayClosedJob(project *models.Project, closure *models.DayClosure) (string, jobs.Job) {
	p, c := *project, *closure
	return jobs.JobNotifyDayClosed, func(ctx context.Context) error {
		if !s.config.EmailEnabled() {
			return nil
		}
		admins, err := s.members.FindAdmins(ctx, p.OrganizationID)
		if err != nil {
			return fmt.Errorf("find admins: %w", err)
		}
		var errs []error
		for i := range admins {
			if err := s.SendDayClosed(ctx, &admins[i], &p, &c); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
