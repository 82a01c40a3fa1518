package repository

import (
	"context"
	"time"

	"elog-backend/internal/domains/attachment/model"
)

type AttachmentRepository interface {
	// Insert persists a new attachment row.
	Insert(ctx context.Context, attachment *model.Attachment) error

	// FindByID gets an attachment, model.ErrAttachmentNotFound when absent.
	FindByID(ctx context.Context, id string) (*model.Attachment, error)

	// FindAllByIDIn gets the attachments with the given ids, in input
	// order. Missing ids are skipped.
	FindAllByIDIn(ctx context.Context, ids []string) ([]*model.Attachment, error)

	// MissingIDs returns the ids with no attachment row, preserving input
	// order.
	MissingIDs(ctx context.Context, ids []string) ([]string, error)

	// SetPreviewState moves the preview through its lifecycle.
	SetPreviewState(ctx context.Context, id, state string) error

	// FindStalled returns attachments created before the cutoff whose
	// preview is still Waiting or Processing.
	FindStalled(ctx context.Context, before time.Time) ([]*model.Attachment, error)
}
