package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"elog-backend/internal/domains/attachment/model"
)

type memoryAttachmentRepository struct {
	mu          sync.RWMutex
	attachments map[string]*model.Attachment
}

func NewMemoryAttachmentRepository() AttachmentRepository {
	return &memoryAttachmentRepository{
		attachments: make(map[string]*model.Attachment),
	}
}

func (r *memoryAttachmentRepository) Insert(ctx context.Context, attachment *model.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *attachment
	r.attachments[attachment.ID] = &cp
	return nil
}

func (r *memoryAttachmentRepository) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attachment, ok := r.attachments[id]
	if !ok {
		return nil, model.NewAttachmentNotFoundError(id)
	}
	cp := *attachment
	return &cp, nil
}

func (r *memoryAttachmentRepository) FindAllByIDIn(ctx context.Context, ids []string) ([]*model.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Attachment{}
	for _, id := range ids {
		if attachment, ok := r.attachments[id]; ok {
			cp := *attachment
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memoryAttachmentRepository) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	missing := []string{}
	for _, id := range ids {
		if _, ok := r.attachments[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *memoryAttachmentRepository) SetPreviewState(ctx context.Context, id, state string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	attachment, ok := r.attachments[id]
	if !ok {
		return model.NewAttachmentNotFoundError(id)
	}
	attachment.PreviewState = state
	return nil
}

func (r *memoryAttachmentRepository) FindStalled(ctx context.Context, before time.Time) ([]*model.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Attachment{}
	for _, attachment := range r.attachments {
		stalled := attachment.PreviewState == model.PreviewWaiting ||
			attachment.PreviewState == model.PreviewProcessing
		if stalled && attachment.CreatedAt.Before(before) {
			cp := *attachment
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
