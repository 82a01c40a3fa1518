package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"elog-backend/internal/infrastructure/email"
	"elog-backend/internal/shared"
)

// EntryNotificationHandler resolves the recipients of a fresh entry and
// sends the notification email.
type EntryNotificationHandler struct {
	emailService   email.EmailService
	personResolver email.PersonResolver
}

func NewEntryNotificationHandler(
	emailService email.EmailService,
	personResolver email.PersonResolver,
) *EntryNotificationHandler {
	return &EntryNotificationHandler{
		emailService:   emailService,
		personResolver: personResolver,
	}
}

func (h *EntryNotificationHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.EntryNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal EntryNotification payload")
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	people, err := h.personResolver.Resolve(ctx, payload.Recipients)
	if err != nil {
		log.Error().Err(err).Str("entry_id", payload.EntryID).Msg("Failed to resolve recipients")
		return fmt.Errorf("resolve recipients: %w", err)
	}
	if len(people) == 0 {
		log.Info().
			Str("entry_id", payload.EntryID).
			Msg("No resolvable recipients, skipping notification")
		return nil
	}

	mails := make([]string, 0, len(people))
	for _, p := range people {
		mails = append(mails, p.Mail)
	}

	data := email.EntryNotificationData{
		EntryID:    payload.EntryID,
		Title:      payload.Title,
		LoggedBy:   payload.LoggedBy,
		Recipients: mails,
	}
	if err := h.emailService.SendEntryNotification(ctx, data); err != nil {
		log.Error().Err(err).Str("entry_id", payload.EntryID).Msg("Failed to send entry notification")
		return fmt.Errorf("send entry notification: %w", err)
	}

	log.Info().
		Str("entry_id", payload.EntryID).
		Int("recipients", len(mails)).
		Msg("Entry notification sent successfully")

	return nil
}
