package service

import (
	"context"
	"time"

	"elog-backend/internal/domains/attachment/model"
)

// Content is a downloaded attachment payload.
type Content struct {
	FileName    string
	ContentType string
	Data        []byte
}

type AttachmentService interface {
	// Create stores the file, records its metadata and schedules preview
	// generation. Returns the new attachment id.
	Create(ctx context.Context, fileName, contentType string, data []byte) (string, error)

	// Get returns the metadata of an attachment.
	Get(ctx context.Context, id string) (*model.Attachment, error)

	// GetAll returns the attachments with the given ids, input order,
	// missing ids skipped.
	GetAll(ctx context.Context, ids []string) ([]*model.Attachment, error)

	// MissingIDs returns the subset of ids with no stored attachment.
	MissingIDs(ctx context.Context, ids []string) ([]string, error)

	// GetContent downloads the original file.
	GetContent(ctx context.Context, id string) (*Content, error)

	// GetPreview downloads the generated preview. Fails with
	// model.ErrPreviewNotReady until the worker has completed it.
	GetPreview(ctx context.Context, id string) (*Content, error)

	// ProcessPreview runs the preview pipeline for one attachment. Called
	// by the worker.
	ProcessPreview(ctx context.Context, id string) error

	// RequeueStalled re-enqueues preview tasks stuck in Waiting or
	// Processing longer than olderThan. Called by the scheduler.
	RequeueStalled(ctx context.Context, olderThan time.Duration) (int, error)
}
