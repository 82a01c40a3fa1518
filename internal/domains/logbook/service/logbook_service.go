package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"elog-backend/internal/domains/logbook/model"
	"elog-backend/internal/domains/logbook/repository"
)

// Service is the logbook collaborator surface consumed by the entry core.
type Service interface {
	ExistsByID(ctx context.Context, id string) (bool, error)
	GetByID(ctx context.Context, id string) (*model.Logbook, error)
	ListAll(ctx context.Context) ([]*model.Logbook, error)

	// TagBelongsToAny reports whether the tag belongs to one of the given
	// logbooks.
	TagBelongsToAny(ctx context.Context, tagID string, logbookIDs []string) (bool, error)

	// FindShiftByTimeOfDay resolves the shift of a logbook covering the
	// time-of-day of t. Returns nil when no shift window matches.
	FindShiftByTimeOfDay(ctx context.Context, logbookID string, t time.Time) (*model.Shift, error)

	// FindEarliestStartForLastNShifts resolves the start instant of the n-th
	// most recent shift occurrence across the given logbooks, counted
	// backwards from end. Used as the start-date floor of "last N shifts"
	// searches.
	FindEarliestStartForLastNShifts(ctx context.Context, n int, logbookIDs []string, end time.Time) (time.Time, error)
}

type logbookService struct {
	repo repository.LogbookRepository
}

func NewLogbookService(repo repository.LogbookRepository) Service {
	return &logbookService{repo: repo}
}

func (s *logbookService) ExistsByID(ctx context.Context, id string) (bool, error) {
	return s.repo.ExistsByID(ctx, id)
}

func (s *logbookService) GetByID(ctx context.Context, id string) (*model.Logbook, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *logbookService) ListAll(ctx context.Context) ([]*model.Logbook, error) {
	return s.repo.ListAll(ctx)
}

func (s *logbookService) TagBelongsToAny(ctx context.Context, tagID string, logbookIDs []string) (bool, error) {
	tag, err := s.repo.FindTagByID(ctx, tagID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve tag %s: %w", tagID, err)
	}
	if tag == nil {
		return false, nil
	}
	for _, id := range logbookIDs {
		if tag.LogbookID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *logbookService) FindShiftByTimeOfDay(ctx context.Context, logbookID string, t time.Time) (*model.Shift, error) {
	lb, err := s.repo.GetByID(ctx, logbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logbook %s: %w", logbookID, err)
	}
	for _, shift := range lb.Shifts {
		if shift.Contains(t) {
			cp := shift
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *logbookService) FindEarliestStartForLastNShifts(ctx context.Context, n int, logbookIDs []string, end time.Time) (time.Time, error) {
	var shifts []model.Shift
	for _, id := range logbookIDs {
		lb, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to get logbook %s: %w", id, err)
		}
		shifts = append(shifts, lb.Shifts...)
	}
	if len(shifts) == 0 {
		return time.Time{}, model.ErrShiftNotFound
	}

	// Every day contributes one occurrence per shift, so scanning n days
	// back (plus the current one) always yields at least n occurrences.
	var starts []time.Time
	for dayOffset := 0; dayOffset <= n; dayOffset++ {
		day := end.AddDate(0, 0, -dayOffset)
		for _, shift := range shifts {
			start, err := shift.StartOn(day)
			if err != nil {
				return time.Time{}, err
			}
			if !start.After(end) {
				starts = append(starts, start)
			}
		}
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].After(starts[j]) })
	if len(starts) < n {
		return starts[len(starts)-1], nil
	}
	return starts[n-1], nil
}
