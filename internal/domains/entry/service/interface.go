package service

import (
	"context"
	"time"

	"elog-backend/internal/domains/entry/model"
)

// EntryService is the entry graph: creation, supersession, follow-up
// threads and the bidirectional reference index.
type EntryService interface {
	// CreateNew validates and persists a standalone entry, returning its
	// id. The notification email is dispatched best effort.
	CreateNew(ctx context.Context, req *model.NewEntryRequest, creator model.Creator) (string, error)

	// CreateSupersede replaces an entry with a new version. The new entry
	// inherits the follow-ups and eventAt of the old one, every live
	// referrer is rewritten to point at the new id, and the old entry gets
	// its write-once supersede pointer set.
	CreateSupersede(ctx context.Context, id string, req *model.NewEntryRequest, creator model.Creator) (string, error)

	// CreateFollowUp creates an entry physically linked to a parent. No
	// draft transformation: follow-ups are independent log events.
	CreateFollowUp(ctx context.Context, id string, req *model.NewEntryRequest, creator model.Creator) (string, error)

	// GetFull assembles an entry view with the requested relational
	// expansions.
	GetFull(ctx context.Context, id string, opts model.ExpandOptions) (*model.EntryResponse, error)

	// SearchAll runs the anchored window query and returns decorated
	// summary views, newest first.
	SearchAll(ctx context.Context, q *model.QueryWithAnchor) ([]model.EntrySummaryResponse, error)

	// GetReferences returns the live entries whose body references id.
	GetReferences(ctx context.Context, id string) ([]model.EntrySummaryResponse, error)

	// GetFollowUps returns the follow-up entries of id.
	GetFollowUps(ctx context.Context, id string) ([]model.EntrySummaryResponse, error)

	// FindSummaryID resolves the summary entry of a shift occurrence.
	FindSummaryID(ctx context.Context, shiftID string, date time.Time) (string, error)

	// ExistsByOriginID checks import idempotency.
	ExistsByOriginID(ctx context.Context, originID string) (bool, error)
}
