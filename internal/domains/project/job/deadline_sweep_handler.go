package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"editflow-backend/internal/domains/project/service"
)

// ============================================
// Deadline Sweep Handler
// ============================================
// Scheduled by the worker. Latches the exceeded flag on every project whose
// editor deadline passed while it sat in an active editing state.

type DeadlineSweepHandler struct {
	projectService service.ProjectService
}

func NewDeadlineSweepHandler(projectService service.ProjectService) *DeadlineSweepHandler {
	return &DeadlineSweepHandler{projectService: projectService}
}

func (h *DeadlineSweepHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	latched, err := h.projectService.SweepOverdueDeadlines(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Deadline sweep failed")
		return err
	}

	if latched > 0 {
		log.Info().Int("latched", latched).Msg("Deadline sweep latched overdue projects")
	} else {
		log.Debug().Msg("Deadline sweep found nothing overdue")
	}
	return nil
}
