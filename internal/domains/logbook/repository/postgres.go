package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"elog-backend/internal/domains/logbook/model"
)

type postgresLogbookRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresLogbookRepository(pool *pgxpool.Pool) LogbookRepository {
	return &postgresLogbookRepository{pool: pool}
}

func (r *postgresLogbookRepository) GetByID(ctx context.Context, id string) (*model.Logbook, error) {
	query := `SELECT id, name FROM logbooks WHERE id = $1`

	lb := &model.Logbook{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&lb.ID, &lb.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrLogbookNotFound
		}
		return nil, fmt.Errorf("failed to get logbook: %w", err)
	}

	shifts, err := r.shiftsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	lb.Shifts = shifts

	tags, err := r.tagsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	lb.Tags = tags

	return lb, nil
}

func (r *postgresLogbookRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM logbooks WHERE id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check logbook existence: %w", err)
	}
	return exists, nil
}

func (r *postgresLogbookRepository) ListAll(ctx context.Context) ([]*model.Logbook, error) {
	query := `SELECT id, name FROM logbooks ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list logbooks: %w", err)
	}
	defer rows.Close()

	var logbooks []*model.Logbook
	for rows.Next() {
		lb := &model.Logbook{}
		if err := rows.Scan(&lb.ID, &lb.Name); err != nil {
			return nil, fmt.Errorf("failed to scan logbook: %w", err)
		}
		logbooks = append(logbooks, lb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read logbooks: %w", err)
	}

	for _, lb := range logbooks {
		if lb.Shifts, err = r.shiftsOf(ctx, lb.ID); err != nil {
			return nil, err
		}
		if lb.Tags, err = r.tagsOf(ctx, lb.ID); err != nil {
			return nil, err
		}
	}

	return logbooks, nil
}

func (r *postgresLogbookRepository) FindTagByID(ctx context.Context, tagID string) (*model.Tag, error) {
	query := `SELECT id, logbook_id, name FROM tags WHERE id = $1`

	tag := &model.Tag{}
	err := r.pool.QueryRow(ctx, query, tagID).Scan(&tag.ID, &tag.LogbookID, &tag.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return tag, nil
}

func (r *postgresLogbookRepository) shiftsOf(ctx context.Context, logbookID string) ([]model.Shift, error) {
	query := `
		SELECT id, logbook_id, name, time_from, time_to
		FROM shifts
		WHERE logbook_id = $1
		ORDER BY time_from
	`

	rows, err := r.pool.Query(ctx, query, logbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shifts: %w", err)
	}
	defer rows.Close()

	var shifts []model.Shift
	for rows.Next() {
		var s model.Shift
		if err := rows.Scan(&s.ID, &s.LogbookID, &s.Name, &s.From, &s.To); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}

func (r *postgresLogbookRepository) tagsOf(ctx context.Context, logbookID string) ([]model.Tag, error) {
	query := `SELECT id, logbook_id, name FROM tags WHERE logbook_id = $1 ORDER BY name`

	rows, err := r.pool.Query(ctx, query, logbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		if err := rows.Scan(&t.ID, &t.LogbookID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
