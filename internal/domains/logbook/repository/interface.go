package repository

import (
	"context"

	"elog-backend/internal/domains/logbook/model"
)

// LogbookRepository is the read-only data access the entry core needs.
type LogbookRepository interface {
	// GetByID gets a logbook with its shifts and tags.
	GetByID(ctx context.Context, id string) (*model.Logbook, error)

	// ExistsByID checks logbook existence.
	ExistsByID(ctx context.Context, id string) (bool, error)

	// ListAll lists every logbook (read-only browsing endpoint).
	ListAll(ctx context.Context) ([]*model.Logbook, error)

	// FindTagByID resolves a tag wherever it lives.
	FindTagByID(ctx context.Context, tagID string) (*model.Tag, error)
}
