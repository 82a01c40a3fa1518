package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"elog-backend/internal/domains/attachment/model"
)

type postgresAttachmentRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &postgresAttachmentRepository{pool: pool}
}

func (r *postgresAttachmentRepository) Insert(ctx context.Context, attachment *model.Attachment) error {
	query := `
		INSERT INTO attachments (id, file_name, content_type, preview_state, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		attachment.ID,
		attachment.FileName,
		attachment.ContentType,
		attachment.PreviewState,
		attachment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert attachment: %w", err)
	}
	return nil
}

func (r *postgresAttachmentRepository) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	query := `
		SELECT id, file_name, content_type, preview_state, created_at
		FROM attachments
		WHERE id = $1
	`

	attachment := &model.Attachment{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&attachment.ID,
		&attachment.FileName,
		&attachment.ContentType,
		&attachment.PreviewState,
		&attachment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewAttachmentNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return attachment, nil
}

func (r *postgresAttachmentRepository) FindAllByIDIn(ctx context.Context, ids []string) ([]*model.Attachment, error) {
	if len(ids) == 0 {
		return []*model.Attachment{}, nil
	}

	query := `
		SELECT id, file_name, content_type, preview_state, created_at
		FROM attachments
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*model.Attachment, len(ids))
	for rows.Next() {
		attachment := &model.Attachment{}
		err := rows.Scan(
			&attachment.ID,
			&attachment.FileName,
			&attachment.ContentType,
			&attachment.PreviewState,
			&attachment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		byID[attachment.ID] = attachment
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}

	result := make([]*model.Attachment, 0, len(byID))
	for _, id := range ids {
		if attachment, ok := byID[id]; ok {
			result = append(result, attachment)
		}
	}
	return result, nil
}

func (r *postgresAttachmentRepository) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id FROM attachments WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to check attachment ids: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan attachment id: %w", err)
		}
		existing[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to check attachment ids: %w", err)
	}

	missing := []string{}
	for _, id := range ids {
		if !existing[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *postgresAttachmentRepository) SetPreviewState(ctx context.Context, id, state string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attachments SET preview_state = $2 WHERE id = $1`, id, state,
	)
	if err != nil {
		return fmt.Errorf("failed to update preview state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewAttachmentNotFoundError(id)
	}
	return nil
}

func (r *postgresAttachmentRepository) FindStalled(ctx context.Context, before time.Time) ([]*model.Attachment, error) {
	query := `
		SELECT id, file_name, content_type, preview_state, created_at
		FROM attachments
		WHERE preview_state = ANY($1) AND created_at < $2
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query,
		pq.Array([]string{model.PreviewWaiting, model.PreviewProcessing}), before,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stalled attachments: %w", err)
	}
	defer rows.Close()

	result := []*model.Attachment{}
	for rows.Next() {
		attachment := &model.Attachment{}
		err := rows.Scan(
			&attachment.ID,
			&attachment.FileName,
			&attachment.ContentType,
			&attachment.PreviewState,
			&attachment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		result = append(result, attachment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list stalled attachments: %w", err)
	}
	return result, nil
}
