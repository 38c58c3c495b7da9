package main

import (
	"github.com/hibiken/asynq"

	projectJob "editflow-backend/internal/domains/project/job"
	"editflow-backend/internal/infrastructure/email"
	emailjob "editflow-backend/internal/infrastructure/email/job"
	"editflow-backend/internal/shared"
	"editflow-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	assignmentEmail   *emailjob.AssignmentEmailHandler
	reviewResultEmail *emailjob.ReviewResultEmailHandler
	feedbackAlert     *emailjob.ClientFeedbackAlertHandler

	deadlineSweep *projectJob.DeadlineSweepHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	emailSvc := email.NewSMTPEmailService(c.Config.SMTP)

	return &HandlerRegistry{
		assignmentEmail:   emailjob.NewAssignmentEmailHandler(emailSvc),
		reviewResultEmail: emailjob.NewReviewResultEmailHandler(emailSvc),
		feedbackAlert:     emailjob.NewClientFeedbackAlertHandler(emailSvc, c.Config.Notifications.AdminEmail),

		deadlineSweep: projectJob.NewDeadlineSweepHandler(c.ProjectService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeNotifyAssignment, h.assignmentEmail.ProcessTask)
	mux.HandleFunc(shared.TypeNotifyReviewResult, h.reviewResultEmail.ProcessTask)
	mux.HandleFunc(shared.TypeNotifyClientFeedback, h.feedbackAlert.ProcessTask)

	mux.HandleFunc(shared.TypeDeadlineSweep, h.deadlineSweep.ProcessTask)
}
