package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"elog-backend/internal/shared"
	"elog-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddress, redisPassword string, redisDB int) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddress,
			Password: redisPassword,
			DB:       redisDB,
		},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{scheduler: scheduler}
}

// RegisterJobs wires the periodic maintenance tasks.
func (s *Scheduler) RegisterJobs() error {
	return s.registerRetryStalledPreviewsJob()
}

// Previews stuck in Waiting or Processing usually mean the worker died
// mid-task. Sweeping every 15 minutes keeps the backlog small without
// hammering the attachment table.
func (s *Scheduler) registerRetryStalledPreviewsJob() error {
	payload, err := json.Marshal(shared.RetryStalledPayload{OlderThanMinutes: 30})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeRetryStalledPreviews, payload)

	_, err = s.scheduler.Register(
		"*/15 * * * *",
		task,
		asynq.Queue(shared.QueueAttachment),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register RetryStalledPreviews job", err)
		return err
	}

	logger.Info("✓ Registered RetryStalledPreviews: every 15 minutes", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
