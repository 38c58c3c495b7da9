package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"editflow-backend/internal/infrastructure/email"
	"editflow-backend/internal/shared"
)

// ============================================
// Assignment Notification Handler
// ============================================

type AssignmentEmailHandler struct {
	emailService email.EmailService
}

func NewAssignmentEmailHandler(emailService email.EmailService) *AssignmentEmailHandler {
	return &AssignmentEmailHandler{emailService: emailService}
}

func (h *AssignmentEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.AssignmentNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal assignment notification payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log.Info().
		Str("project_id", payload.ProjectID).
		Str("editor", payload.EditorEmail).
		Bool("reassignment", payload.IsReassignment).
		Msg("Sending assignment notification")

	if err := h.emailService.SendAssignmentEmail(ctx, payload); err != nil {
		log.Error().Err(err).Msg("Failed to send assignment email")
		return fmt.Errorf("send assignment email: %w", err)
	}
	return nil
}

// ============================================
// Review Result Handler
// ============================================

type ReviewResultEmailHandler struct {
	emailService email.EmailService
}

func NewReviewResultEmailHandler(emailService email.EmailService) *ReviewResultEmailHandler {
	return &ReviewResultEmailHandler{emailService: emailService}
}

func (h *ReviewResultEmailHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ReviewResultPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal review result payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log.Info().
		Str("project_id", payload.ProjectID).
		Str("recipient", payload.RecipientEmail).
		Bool("approved", payload.Approved).
		Msg("Sending review result notification")

	if err := h.emailService.SendReviewResultEmail(ctx, payload); err != nil {
		log.Error().Err(err).Msg("Failed to send review result email")
		return fmt.Errorf("send review result email: %w", err)
	}
	return nil
}

// ============================================
// Client Feedback Alert Handler
// ============================================

type ClientFeedbackAlertHandler struct {
	emailService email.EmailService
	adminEmail   string
}

func NewClientFeedbackAlertHandler(emailService email.EmailService, adminEmail string) *ClientFeedbackAlertHandler {
	return &ClientFeedbackAlertHandler{
		emailService: emailService,
		adminEmail:   adminEmail,
	}
}

func (h *ClientFeedbackAlertHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ClientFeedbackAlertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal client feedback payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log.Info().
		Str("project_id", payload.ProjectID).
		Msg("Alerting admin about client revision request")

	if err := h.emailService.SendClientFeedbackAlert(ctx, h.adminEmail, payload); err != nil {
		log.Error().Err(err).Msg("Failed to send client feedback alert")
		return fmt.Errorf("send client feedback alert: %w", err)
	}
	return nil
}
