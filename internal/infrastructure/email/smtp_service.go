package email

import (
	"context"
	"fmt"
	"net/smtp"

	"editflow-backend/internal/config"
	"editflow-backend/internal/shared"
	"editflow-backend/pkg/logger"
)

// EmailService sends workflow notifications. All sends happen from worker
// handlers, never inside a request transaction.
type EmailService interface {
	SendAssignmentEmail(ctx context.Context, data shared.AssignmentNotificationPayload) error
	SendReviewResultEmail(ctx context.Context, data shared.ReviewResultPayload) error
	SendClientFeedbackAlert(ctx context.Context, adminEmail string, data shared.ClientFeedbackAlertPayload) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
	auth     smtp.Auth
}

// NewSMTPEmailService builds the SMTP-backed sender. With no username
// configured it authenticates anonymously (local mailcatcher setups).
func NewSMTPEmailService(cfg config.SMTPConfig) EmailService {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &smtpEmailService{
		smtpAddr: cfg.Host + ":" + cfg.Port,
		smtpFrom: cfg.From,
		auth:     auth,
	}
}

func (s *smtpEmailService) SendAssignmentEmail(ctx context.Context, data shared.AssignmentNotificationPayload) error {
	subject := fmt.Sprintf("New assignment: %s", data.ProjectTitle)
	if data.IsReassignment {
		subject = fmt.Sprintf("Reassigned to you: %s", data.ProjectTitle)
	}

	body := fmt.Sprintf(`Hi %s,

You have been assigned the project "%s".

Deadline: %s (%d hours from assignment)

The raw footage is available in your project folder.`,
		data.EditorName, data.ProjectTitle, data.Deadline, data.DeadlineHours)

	return s.send(data.EditorEmail, subject, body)
}

func (s *smtpEmailService) SendReviewResultEmail(ctx context.Context, data shared.ReviewResultPayload) error {
	var subject, body string
	if data.Approved {
		subject = fmt.Sprintf("Your video is ready: %s", data.ProjectTitle)
		body = fmt.Sprintf(`Hi %s,

The edited version of "%s" has passed review and is ready for you.

Reviewer notes: %s`,
			data.RecipientName, data.ProjectTitle, data.Comment)
	} else {
		subject = fmt.Sprintf("Revision requested: %s", data.ProjectTitle)
		body = fmt.Sprintf(`Hi %s,

The review of "%s" requested changes.

Reviewer notes: %s`,
			data.RecipientName, data.ProjectTitle, data.Comment)
	}

	return s.send(data.RecipientEmail, subject, body)
}

func (s *smtpEmailService) SendClientFeedbackAlert(ctx context.Context, adminEmail string, data shared.ClientFeedbackAlertPayload) error {
	subject := fmt.Sprintf("Client revision request: %s", data.ProjectTitle)
	body := fmt.Sprintf(`%s requested a revision on "%s":

%s

The project needs an admin decision before work can continue.`,
		data.ClientName, data.ProjectTitle, data.Message)

	return s.send(adminEmail, subject, body)
}

func (s *smtpEmailService) send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, to, subject, body))

	if err := smtp.SendMail(s.smtpAddr, s.auth, s.smtpFrom, []string{to}, msg); err != nil {
		logger.Info("Failed to send email", map[string]interface{}{
			"error":     err.Error(),
			"to":        to,
			"smtp_addr": s.smtpAddr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
