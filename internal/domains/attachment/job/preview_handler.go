package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	attachmentService "elog-backend/internal/domains/attachment/service"
	"elog-backend/internal/shared"
)

// PreviewHandler generates the preview image of an uploaded attachment.
type PreviewHandler struct {
	attachmentService attachmentService.AttachmentService
}

func NewPreviewHandler(attachmentService attachmentService.AttachmentService) *PreviewHandler {
	return &PreviewHandler{
		attachmentService: attachmentService,
	}
}

func (h *PreviewHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.PreviewPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ProcessPreview payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log.Info().
		Str("attachment_id", payload.AttachmentID).
		Msg("Processing attachment preview")

	if err := h.attachmentService.ProcessPreview(ctx, payload.AttachmentID); err != nil {
		log.Error().
			Err(err).
			Str("attachment_id", payload.AttachmentID).
			Msg("Failed to process preview")
		return fmt.Errorf("process preview: %w", err)
	}

	log.Info().
		Str("attachment_id", payload.AttachmentID).
		Msg("Attachment preview processed successfully")

	return nil
}
