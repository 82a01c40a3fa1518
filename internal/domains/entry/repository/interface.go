package repository

import (
	"context"
	"time"

	"elog-backend/internal/domains/entry/model"
)

// AnchorTimes carries only the two timestamp fields of an anchor entry, so
// resolving an anchor never loads the full document.
type AnchorTimes struct {
	LoggedAt time.Time
	EventAt  time.Time
}

// ForSortField picks the timestamp matching the requested sort field.
func (a AnchorTimes) ForSortField(sortByLogDate bool) time.Time {
	if sortByLogDate {
		return a.LoggedAt
	}
	return a.EventAt
}

// EntryRepository is the entry store. Entries are append-mostly: inserted
// once, then touched only by the three graph mutations (supersede pointer,
// follow-up append, reference rewrite).
type EntryRepository interface {
	// Insert persists a new entry.
	Insert(ctx context.Context, entry *model.Entry) error

	// InsertFollowUp persists a new entry and appends its id to the
	// followUps list of parentID, atomically.
	InsertFollowUp(ctx context.Context, entry *model.Entry, parentID string) error

	// FindByID gets an entry, model.ErrEntryNotFound when absent.
	FindByID(ctx context.Context, id string) (*model.Entry, error)

	// FindAllByIDIn gets the entries with the given ids, in input order.
	// Missing ids are skipped.
	FindAllByIDIn(ctx context.Context, ids []string) ([]*model.Entry, error)

	// FilterExistingIDs keeps only ids of existing entries, preserving
	// input order. Used to drop dangling references at write time.
	FilterExistingIDs(ctx context.Context, ids []string) ([]string, error)

	// FindBySupersededBy returns the entry whose supersede pointer is id,
	// i.e. the previous version in the history chain. Nil when id is the
	// oldest version.
	FindBySupersededBy(ctx context.Context, id string) (*model.Entry, error)

	// FindFollowingUp returns the live entry whose followUps list contains
	// id, nil when the entry is not a follow-up of anything current.
	FindFollowingUp(ctx context.Context, id string) (*model.Entry, error)

	// FindReferrers returns the live entries whose references list
	// contains id.
	FindReferrers(ctx context.Context, id string) ([]*model.Entry, error)

	// SetSupersededBy sets the write-once supersede pointer through a
	// conditional update. Returns model.ErrAlreadySuperseded when the
	// pointer was set by a concurrent writer, model.ErrEntryNotFound when
	// the entry is missing.
	SetSupersededBy(ctx context.Context, id, supersededByID string) error

	// UpdateBodyAndReferences rewrites the body text and reference list of
	// an entry. Only used when a referenced entry is superseded.
	UpdateBodyAndReferences(ctx context.Context, id, text string, references []string) error

	// FindSummaryID resolves the id of the summary entry for a shift and
	// date, model.ErrEntryNotFound when absent.
	FindSummaryID(ctx context.Context, shiftID string, date time.Time) (string, error)

	// ExistsByOriginID checks import idempotency.
	ExistsByOriginID(ctx context.Context, originID string) (bool, error)

	// GetAnchorTimes fetches only loggedAt/eventAt of an entry.
	GetAnchorTimes(ctx context.Context, id string) (*AnchorTimes, error)

	// SearchAll runs the anchored two-sided window query. The query must
	// already be validated; the result is a single strictly descending run
	// on the requested sort field.
	SearchAll(ctx context.Context, q *model.QueryWithAnchor) ([]*model.Entry, error)
}
