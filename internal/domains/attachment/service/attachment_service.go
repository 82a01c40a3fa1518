package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"elog-backend/internal/domains/attachment/model"
	"elog-backend/internal/domains/attachment/repository"
	"elog-backend/internal/shared"
	"elog-backend/pkg/logger"
)

// BlobStorage is the object-store surface the service needs. Satisfied by
// storage.MinIOStorage.
type BlobStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Previewer renders preview images. Satisfied by storage.PreviewProcessor.
type Previewer interface {
	CanPreview(data []byte) bool
	BuildPreview(data []byte) ([]byte, error)
}

type attachmentService struct {
	repo      repository.AttachmentRepository
	storage   BlobStorage
	previewer Previewer
	asynq     shared.Enqueuer
}

func NewAttachmentService(
	repo repository.AttachmentRepository,
	storage BlobStorage,
	previewer Previewer,
	asynqClient shared.Enqueuer,
) AttachmentService {
	return &attachmentService{
		repo:      repo,
		storage:   storage,
		previewer: previewer,
		asynq:     asynqClient,
	}
}

func (s *attachmentService) Create(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	attachment := &model.Attachment{
		ID:           uuid.NewString(),
		FileName:     fileName,
		ContentType:  contentType,
		PreviewState: model.PreviewWaiting,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.storage.Upload(ctx, attachment.OriginalKey(), data, contentType); err != nil {
		logger.Error("Failed to upload attachment", err)
		return "", model.NewUploadFailedError(fileName)
	}

	if err := s.repo.Insert(ctx, attachment); err != nil {
		// roll the blob back so no orphan stays behind
		if delErr := s.storage.Delete(ctx, attachment.OriginalKey()); delErr != nil {
			logger.Error("Failed to clean up attachment blob", delErr)
		}
		return "", err
	}

	// preview generation is best effort, the upload result does not depend
	// on it
	payload, err := json.Marshal(shared.PreviewPayload{AttachmentID: attachment.ID})
	if err == nil {
		task := asynq.NewTask(shared.TypeProcessPreview, payload)
		if _, err := s.asynq.Enqueue(task, asynq.Queue(shared.QueueAttachment)); err != nil {
			logger.Error("Failed to enqueue preview task", err)
		}
	}

	return attachment.ID, nil
}

func (s *attachmentService) Get(ctx context.Context, id string) (*model.Attachment, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *attachmentService) GetAll(ctx context.Context, ids []string) ([]*model.Attachment, error) {
	return s.repo.FindAllByIDIn(ctx, ids)
}

func (s *attachmentService) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	return s.repo.MissingIDs(ctx, ids)
}

func (s *attachmentService) GetContent(ctx context.Context, id string) (*Content, error) {
	attachment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := s.storage.Download(ctx, attachment.OriginalKey())
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment %s: %w", id, err)
	}

	return &Content{
		FileName:    attachment.FileName,
		ContentType: attachment.ContentType,
		Data:        data,
	}, nil
}

func (s *attachmentService) GetPreview(ctx context.Context, id string) (*Content, error) {
	attachment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if attachment.PreviewState != model.PreviewCompleted {
		return nil, model.NewPreviewNotReadyError(id)
	}

	data, err := s.storage.Download(ctx, attachment.PreviewKey())
	if err != nil {
		return nil, fmt.Errorf("failed to download preview %s: %w", id, err)
	}

	return &Content{
		FileName:    "preview.jpg",
		ContentType: "image/jpeg",
		Data:        data,
	}, nil
}

// ProcessPreview drives the preview state machine:
// Waiting -> Processing -> Completed | PreviewNotAvailable | Error.
func (s *attachmentService) ProcessPreview(ctx context.Context, id string) error {
	attachment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SetPreviewState(ctx, id, model.PreviewProcessing); err != nil {
		return err
	}

	data, err := s.storage.Download(ctx, attachment.OriginalKey())
	if err != nil {
		s.repo.SetPreviewState(ctx, id, model.PreviewError)
		return fmt.Errorf("failed to download original %s: %w", id, err)
	}

	if !s.previewer.CanPreview(data) {
		return s.repo.SetPreviewState(ctx, id, model.PreviewNotAvailable)
	}

	preview, err := s.previewer.BuildPreview(data)
	if err != nil {
		s.repo.SetPreviewState(ctx, id, model.PreviewError)
		return fmt.Errorf("failed to build preview %s: %w", id, err)
	}

	if err := s.storage.Upload(ctx, attachment.PreviewKey(), preview, "image/jpeg"); err != nil {
		s.repo.SetPreviewState(ctx, id, model.PreviewError)
		return fmt.Errorf("failed to upload preview %s: %w", id, err)
	}

	return s.repo.SetPreviewState(ctx, id, model.PreviewCompleted)
}

// RequeueStalled re-enqueues preview tasks for attachments whose preview
// never completed, typically after a worker crash. Returns how many tasks
// were enqueued.
func (s *attachmentService) RequeueStalled(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	stalled, err := s.repo.FindStalled(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	requeued := 0
	for _, attachment := range stalled {
		if err := s.repo.SetPreviewState(ctx, attachment.ID, model.PreviewWaiting); err != nil {
			logger.Error("Failed to reset preview state", err)
			continue
		}

		payload, err := json.Marshal(shared.PreviewPayload{AttachmentID: attachment.ID})
		if err != nil {
			continue
		}
		task := asynq.NewTask(shared.TypeProcessPreview, payload)
		if _, err := s.asynq.Enqueue(task, asynq.Queue(shared.QueueAttachment)); err != nil {
			logger.Error("Failed to requeue preview task", err)
			continue
		}
		requeued++
	}

	if requeued > 0 {
		logger.Info("Requeued stalled previews", map[string]interface{}{
			"count": requeued,
		})
	}
	return requeued, nil
}
