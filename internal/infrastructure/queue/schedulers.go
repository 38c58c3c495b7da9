package queue

import (
	"time"

	"editflow-backend/internal/shared"
	"editflow-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	sweepCron string
}

func NewScheduler(redisOpt asynq.RedisClientOpt, sweepCron string) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		sweepCron: sweepCron,
	}
}

// RegisterMaintenanceJobs wires the recurring jobs. Only one exists
// today: the deadline sweep that flags overdue projects so the sweep
// stays correct even when nobody opens an overdue project for days.
func (s *Scheduler) RegisterMaintenanceJobs() error {
	task := asynq.NewTask(shared.TypeDeadlineSweep, nil)

	_, err := s.scheduler.Register(
		s.sweepCron,
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("failed to register deadline sweep job", err)
		return err
	}

	logger.Info("registered deadline sweep", map[string]interface{}{
		"cron": s.sweepCron,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
