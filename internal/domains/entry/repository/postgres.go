package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"elog-backend/internal/domains/entry/model"
	"elog-backend/pkg/database"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================

type postgresEntryRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresEntryRepository(pool *pgxpool.Pool) EntryRepository {
	return &postgresEntryRepository{pool: pool}
}

const entryColumns = `
	id, origin_id, logbooks, tags,
	title, text, note,
	first_name, last_name, user_name,
	superseded_by, follow_ups, refs, attachments,
	summarizes_shift_id, summarizes_date,
	logged_at, event_at, user_ids_to_notify, version
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row rowScanner) (*model.Entry, error) {
	entry := &model.Entry{}
	var (
		logbooks, tags, followUps, refs []string
		attachments, notify             []string
		summarizesShiftID               *string
		summarizesDate                  *time.Time
	)

	err := row.Scan(
		&entry.ID,
		&entry.OriginID,
		pq.Array(&logbooks),
		pq.Array(&tags),
		&entry.Title,
		&entry.Text,
		&entry.Note,
		&entry.FirstName,
		&entry.LastName,
		&entry.UserName,
		&entry.SupersededBy,
		pq.Array(&followUps),
		pq.Array(&refs),
		pq.Array(&attachments),
		&summarizesShiftID,
		&summarizesDate,
		&entry.LoggedAt,
		&entry.EventAt,
		pq.Array(&notify),
		&entry.Version,
	)
	if err != nil {
		return nil, err
	}

	entry.Logbooks = logbooks
	entry.Tags = tags
	entry.FollowUps = followUps
	entry.References = refs
	entry.Attachments = attachments
	entry.UserIDsToNotify = notify
	if summarizesShiftID != nil && summarizesDate != nil {
		entry.Summarizes = &model.Summarizes{
			ShiftID: *summarizesShiftID,
			Date:    *summarizesDate,
		}
	}
	return entry, nil
}

// =====================================================
// CREATE
// =====================================================

// execer is satisfied by both pgxpool.Pool and pgx.Tx, so inserts run
// inside or outside a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *postgresEntryRepository) Insert(ctx context.Context, entry *model.Entry) error {
	return insertEntry(ctx, r.pool, entry)
}

// InsertFollowUp inserts the entry and links it to its parent in one
// transaction, so a crash never leaves an orphan follow-up.
func (r *postgresEntryRepository) InsertFollowUp(ctx context.Context, entry *model.Entry, parentID string) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := insertEntry(ctx, tx, entry); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE entries
			SET follow_ups = array_append(follow_ups, $2), version = version + 1
			WHERE id = $1
		`, parentID, entry.ID)
		if err != nil {
			return fmt.Errorf("failed to append follow-up: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.NewEntryNotFoundError(parentID)
		}
		return nil
	})
}

func insertEntry(ctx context.Context, db execer, entry *model.Entry) error {
	query := `
		INSERT INTO entries (
			id, origin_id, logbooks, tags,
			title, text, note,
			first_name, last_name, user_name,
			superseded_by, follow_ups, refs, attachments,
			summarizes_shift_id, summarizes_date,
			logged_at, event_at, user_ids_to_notify, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	var summarizesShiftID *string
	var summarizesDate *time.Time
	if entry.Summarizes != nil {
		summarizesShiftID = &entry.Summarizes.ShiftID
		summarizesDate = &entry.Summarizes.Date
	}

	_, err := db.Exec(ctx, query,
		entry.ID,
		entry.OriginID,
		pq.Array(entry.Logbooks),
		pq.Array(entry.Tags),
		entry.Title,
		entry.Text,
		entry.Note,
		entry.FirstName,
		entry.LastName,
		entry.UserName,
		entry.SupersededBy,
		pq.Array(entry.FollowUps),
		pq.Array(entry.References),
		pq.Array(entry.Attachments),
		summarizesShiftID,
		summarizesDate,
		entry.LoggedAt,
		entry.EventAt,
		pq.Array(entry.UserIDsToNotify),
		entry.Version,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			originID := ""
			if entry.OriginID != nil {
				originID = *entry.OriginID
			}
			return model.NewDuplicateOriginError(originID)
		}
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	return nil
}

// =====================================================
// LOOKUPS
// =====================================================

func (r *postgresEntryRepository) FindByID(ctx context.Context, id string) (*model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewEntryNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

func (r *postgresEntryRepository) FindAllByIDIn(ctx context.Context, ids []string) ([]*model.Entry, error) {
	if len(ids) == 0 {
		return []*model.Entry{}, nil
	}

	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*model.Entry, len(ids))
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		byID[entry.ID] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}

	// preserve the caller's ordering, drop missing ids
	result := make([]*model.Entry, 0, len(byID))
	for _, id := range ids {
		if entry, ok := byID[id]; ok {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *postgresEntryRepository) FilterExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id FROM entries WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to filter entry ids: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan entry id: %w", err)
		}
		existing[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to filter entry ids: %w", err)
	}

	result := make([]string, 0, len(existing))
	for _, id := range ids {
		if existing[id] {
			result = append(result, id)
		}
	}
	return result, nil
}

func (r *postgresEntryRepository) FindBySupersededBy(ctx context.Context, id string) (*model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE superseded_by = $1`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get superseded entry: %w", err)
	}
	return entry, nil
}

func (r *postgresEntryRepository) FindFollowingUp(ctx context.Context, id string) (*model.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE follow_ups @> ARRAY[$1] AND superseded_by IS NULL`

	entry, err := scanEntry(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get followed-up entry: %w", err)
	}
	return entry, nil
}

func (r *postgresEntryRepository) FindReferrers(ctx context.Context, id string) ([]*model.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM entries
		WHERE refs @> ARRAY[$1] AND superseded_by IS NULL
		ORDER BY logged_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrers: %w", err)
	}
	defer rows.Close()

	result := []*model.Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list referrers: %w", err)
	}
	return result, nil
}

func (r *postgresEntryRepository) FindSummaryID(ctx context.Context, shiftID string, date time.Time) (string, error) {
	query := `
		SELECT id FROM entries
		WHERE summarizes_shift_id = $1 AND summarizes_date = $2 AND superseded_by IS NULL
	`

	var id string
	err := r.pool.QueryRow(ctx, query, shiftID, date).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", model.ErrEntryNotFound
		}
		return "", fmt.Errorf("failed to find summary: %w", err)
	}
	return id, nil
}

func (r *postgresEntryRepository) ExistsByOriginID(ctx context.Context, originID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM entries WHERE origin_id = $1)`, originID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check origin id: %w", err)
	}
	return exists, nil
}

func (r *postgresEntryRepository) GetAnchorTimes(ctx context.Context, id string) (*AnchorTimes, error) {
	anchor := &AnchorTimes{}
	err := r.pool.QueryRow(ctx,
		`SELECT logged_at, event_at FROM entries WHERE id = $1`, id,
	).Scan(&anchor.LoggedAt, &anchor.EventAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewEntryNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get anchor: %w", err)
	}
	return anchor, nil
}

// =====================================================
// GRAPH MUTATIONS
// =====================================================

// SetSupersededBy guards the write-once pointer with a conditional update:
// the row only matches while the pointer is still unset, so of two racing
// supersedes exactly one wins.
func (r *postgresEntryRepository) SetSupersededBy(ctx context.Context, id, supersededByID string) error {
	query := `
		UPDATE entries
		SET superseded_by = $2, version = version + 1
		WHERE id = $1 AND superseded_by IS NULL
	`

	tag, err := r.pool.Exec(ctx, query, id, supersededByID)
	if err != nil {
		return fmt.Errorf("failed to supersede entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM entries WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to supersede entry: %w", err)
		}
		if !exists {
			return model.NewEntryNotFoundError(id)
		}
		return model.NewAlreadySupersededError(id)
	}
	return nil
}

func (r *postgresEntryRepository) UpdateBodyAndReferences(ctx context.Context, id, text string, references []string) error {
	query := `
		UPDATE entries
		SET text = $2, refs = $3, version = version + 1
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, text, pq.Array(references))
	if err != nil {
		return fmt.Errorf("failed to rewrite entry body: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewEntryNotFoundError(id)
	}
	return nil
}

// =====================================================
// ANCHORED SEARCH
// =====================================================

// SearchAll runs the two-sided window around the anchor. The context block
// fetches entries at or after the anchor time ascending and is reversed in
// memory; the main block fetches entries strictly before the anchor (or from
// the top when no anchor) descending. Concatenated they form one descending
// run on the sort field, ties broken by id so pages never overlap.
func (r *postgresEntryRepository) SearchAll(ctx context.Context, q *model.QueryWithAnchor) ([]*model.Entry, error) {
	sortField := q.SortField()

	var anchorTime *time.Time
	if q.AnchorID != "" {
		anchor, err := r.GetAnchorTimes(ctx, q.AnchorID)
		if err != nil {
			return nil, err
		}
		t := anchor.ForSortField(q.SortByLogDate)
		anchorTime = &t
	}

	base := buildBaseFilter(q)
	if q.StartDate != nil {
		base.add(sortField+" >= $%d", *q.StartDate)
	}

	result := []*model.Entry{}

	if anchorTime != nil && q.ContextSize > 0 {
		ctxFilter := base.clone()
		ctxFilter.add(sortField+" >= $%d", *anchorTime)

		block, err := r.queryWindow(ctx, ctxFilter, sortField, "ASC", q.ContextSize)
		if err != nil {
			return nil, err
		}
		for i, j := 0, len(block)-1; i < j; i, j = i+1, j-1 {
			block[i], block[j] = block[j], block[i]
		}
		result = append(result, block...)
	}

	limit := *q.Limit
	if limit > 0 {
		mainFilter := base.clone()
		// the end-date ceiling bounds only this block: the context block
		// must show what follows the anchor regardless of it
		if q.EndDate != nil {
			mainFilter.add(sortField+" <= $%d", *q.EndDate)
		}
		if anchorTime != nil {
			mainFilter.add(sortField+" < $%d", *anchorTime)
		}

		block, err := r.queryWindow(ctx, mainFilter, sortField, "DESC", limit)
		if err != nil {
			return nil, err
		}
		result = append(result, block...)
	}

	return result, nil
}

func (r *postgresEntryRepository) queryWindow(
	ctx context.Context,
	filter *filterBuilder,
	sortField, direction string,
	limit int,
) ([]*model.Entry, error) {
	filter.args = append(filter.args, limit)
	query := fmt.Sprintf(
		`SELECT %s FROM entries WHERE %s ORDER BY %s %s, id %s LIMIT $%d`,
		entryColumns, filter.where(), sortField, direction, direction, len(filter.args),
	)

	rows, err := r.pool.Query(ctx, query, filter.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	defer rows.Close()

	result := []*model.Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to search entries: %w", err)
	}
	return result, nil
}
