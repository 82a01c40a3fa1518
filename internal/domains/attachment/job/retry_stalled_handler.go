package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	attachmentService "elog-backend/internal/domains/attachment/service"
	"elog-backend/internal/shared"
)

const defaultStalledAfterMinutes = 30

// RetryStalledHandler sweeps attachments whose preview never finished and
// puts them back on the preview queue.
type RetryStalledHandler struct {
	attachmentService attachmentService.AttachmentService
}

func NewRetryStalledHandler(attachmentService attachmentService.AttachmentService) *RetryStalledHandler {
	return &RetryStalledHandler{
		attachmentService: attachmentService,
	}
}

func (h *RetryStalledHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.RetryStalledPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal RetryStalledPreviews payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	olderThanMinutes := payload.OlderThanMinutes
	if olderThanMinutes <= 0 {
		olderThanMinutes = defaultStalledAfterMinutes
	}

	count, err := h.attachmentService.RequeueStalled(ctx, time.Duration(olderThanMinutes)*time.Minute)
	if err != nil {
		log.Error().Err(err).Msg("Failed to requeue stalled previews")
		return fmt.Errorf("requeue stalled previews: %w", err)
	}

	log.Info().
		Int("requeued", count).
		Int("older_than_minutes", olderThanMinutes).
		Msg("Stalled preview sweep completed")

	return nil
}
