package repository

import (
	"context"
	"sort"
	"sync"

	"elog-backend/internal/domains/logbook/model"
)

// memoryLogbookRepository is an in-memory LogbookRepository used by unit
// tests and local development without a database.
type memoryLogbookRepository struct {
	mu       sync.RWMutex
	logbooks map[string]*model.Logbook
}

func NewMemoryLogbookRepository() LogbookRepository {
	return &memoryLogbookRepository{logbooks: map[string]*model.Logbook{}}
}

// Seed registers a logbook. Test helper, not part of the interface.
func (r *memoryLogbookRepository) Seed(lb *model.Logbook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *lb
	r.logbooks[lb.ID] = &cp
}

// SeedLogbook seeds through the interface without exposing the struct.
func SeedLogbook(repo LogbookRepository, lb *model.Logbook) {
	if m, ok := repo.(*memoryLogbookRepository); ok {
		m.Seed(lb)
	}
}

func (r *memoryLogbookRepository) GetByID(ctx context.Context, id string) (*model.Logbook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lb, ok := r.logbooks[id]
	if !ok {
		return nil, model.ErrLogbookNotFound
	}
	cp := *lb
	return &cp, nil
}

func (r *memoryLogbookRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.logbooks[id]
	return ok, nil
}

func (r *memoryLogbookRepository) ListAll(ctx context.Context) ([]*model.Logbook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Logbook, 0, len(r.logbooks))
	for _, lb := range r.logbooks {
		cp := *lb
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memoryLogbookRepository) FindTagByID(ctx context.Context, tagID string) (*model.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, lb := range r.logbooks {
		for _, t := range lb.Tags {
			if t.ID == tagID {
				cp := t
				return &cp, nil
			}
		}
	}
	return nil, nil
}
