package main

import (
	"github.com/hibiken/asynq"

	attachmentJob "elog-backend/internal/domains/attachment/job"
	emailjob "elog-backend/internal/infrastructure/email/job"
	"elog-backend/internal/shared"
	"elog-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Email handlers
	entryNotification *emailjob.EntryNotificationHandler

	// Attachment handlers
	processPreview *attachmentJob.PreviewHandler
	retryStalled   *attachmentJob.RetryStalledHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		entryNotification: emailjob.NewEntryNotificationHandler(c.EmailService, c.PersonResolver),
		processPreview:    attachmentJob.NewPreviewHandler(c.AttachmentService),
		retryStalled:      attachmentJob.NewRetryStalledHandler(c.AttachmentService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Email tasks
	mux.HandleFunc(shared.TypeSendEntryNotification, h.entryNotification.ProcessTask)

	// Attachment tasks
	mux.HandleFunc(shared.TypeProcessPreview, h.processPreview.ProcessTask)
	mux.HandleFunc(shared.TypeRetryStalledPreviews, h.retryStalled.ProcessTask)
}
