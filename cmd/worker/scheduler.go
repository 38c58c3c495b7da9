package main

import (
	"log"

	"editflow-backend/internal/infrastructure/queue"
	"editflow-backend/pkg/container"

	"github.com/hibiken/asynq"
)

// asynqScheduler wraps queue.Scheduler with additional functionality
type asynqScheduler struct {
	*queue.Scheduler
}

// setupScheduler creates and configures the scheduler
func setupScheduler(c *container.Container) *asynqScheduler {
	scheduler := queue.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     c.Config.Redis.Host,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		},
		c.Config.Notifications.DeadlineSweepCron,
	)

	if err := scheduler.RegisterMaintenanceJobs(); err != nil {
		log.Fatalf("[Scheduler] failed to register: %v", err)
	}

	go func() {
		log.Println("[Scheduler] starting...")
		if err := scheduler.Start(); err != nil {
			log.Fatalf("[Scheduler] failed: %v", err)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

// Shutdown gracefully shuts down the scheduler
func (s *asynqScheduler) Shutdown() {
	log.Println("[Scheduler] shutting down...")
	s.Scheduler.Shutdown()
	log.Println("[Scheduler] stopped")
}
