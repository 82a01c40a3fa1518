package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"elog-backend/internal/domains/entry/model"
)

// =====================================================
// IN-MEMORY REPOSITORY IMPLEMENTATION
// =====================================================

// memoryEntryRepository mirrors the Postgres semantics, including the
// conditional supersede update and the anchored window ordering, so the
// service can be exercised without a database.
type memoryEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*model.Entry
}

func NewMemoryEntryRepository() EntryRepository {
	return &memoryEntryRepository{
		entries: make(map[string]*model.Entry),
	}
}

func cloneEntry(e *model.Entry) *model.Entry {
	cp := *e
	cp.Logbooks = append([]string{}, e.Logbooks...)
	cp.Tags = append([]string{}, e.Tags...)
	cp.FollowUps = append([]string{}, e.FollowUps...)
	cp.References = append([]string{}, e.References...)
	cp.Attachments = append([]string{}, e.Attachments...)
	cp.UserIDsToNotify = append([]string{}, e.UserIDsToNotify...)
	if e.Summarizes != nil {
		s := *e.Summarizes
		cp.Summarizes = &s
	}
	return &cp
}

func (r *memoryEntryRepository) Insert(ctx context.Context, entry *model.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.OriginID != nil {
		for _, e := range r.entries {
			if e.OriginID != nil && *e.OriginID == *entry.OriginID {
				return model.NewDuplicateOriginError(*entry.OriginID)
			}
		}
	}
	r.entries[entry.ID] = cloneEntry(entry)
	return nil
}

func (r *memoryEntryRepository) InsertFollowUp(ctx context.Context, entry *model.Entry, parentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.entries[parentID]
	if !ok {
		return model.NewEntryNotFoundError(parentID)
	}
	r.entries[entry.ID] = cloneEntry(entry)
	parent.FollowUps = append(parent.FollowUps, entry.ID)
	parent.Version++
	return nil
}

func (r *memoryEntryRepository) FindByID(ctx context.Context, id string) (*model.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, model.NewEntryNotFoundError(id)
	}
	return cloneEntry(entry), nil
}

func (r *memoryEntryRepository) FindAllByIDIn(ctx context.Context, ids []string) ([]*model.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Entry{}
	for _, id := range ids {
		if entry, ok := r.entries[id]; ok {
			result = append(result, cloneEntry(entry))
		}
	}
	return result, nil
}

func (r *memoryEntryRepository) FilterExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []string{}
	for _, id := range ids {
		if _, ok := r.entries[id]; ok {
			result = append(result, id)
		}
	}
	return result, nil
}

func (r *memoryEntryRepository) FindBySupersededBy(ctx context.Context, id string) (*model.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		if entry.SupersededBy != nil && *entry.SupersededBy == id {
			return cloneEntry(entry), nil
		}
	}
	return nil, nil
}

func (r *memoryEntryRepository) FindFollowingUp(ctx context.Context, id string) (*model.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		if entry.SupersededBy != nil {
			continue
		}
		for _, fu := range entry.FollowUps {
			if fu == id {
				return cloneEntry(entry), nil
			}
		}
	}
	return nil, nil
}

func (r *memoryEntryRepository) FindReferrers(ctx context.Context, id string) ([]*model.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.Entry{}
	for _, entry := range r.entries {
		if entry.SupersededBy != nil {
			continue
		}
		for _, ref := range entry.References {
			if ref == id {
				result = append(result, cloneEntry(entry))
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LoggedAt.Equal(result[j].LoggedAt) {
			return result[i].LoggedAt.After(result[j].LoggedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *memoryEntryRepository) SetSupersededBy(ctx context.Context, id, supersededByID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return model.NewEntryNotFoundError(id)
	}
	if entry.SupersededBy != nil {
		return model.NewAlreadySupersededError(id)
	}
	entry.SupersededBy = &supersededByID
	entry.Version++
	return nil
}

func (r *memoryEntryRepository) UpdateBodyAndReferences(ctx context.Context, id, text string, references []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return model.NewEntryNotFoundError(id)
	}
	entry.Text = text
	entry.References = append([]string{}, references...)
	entry.Version++
	return nil
}

func (r *memoryEntryRepository) FindSummaryID(ctx context.Context, shiftID string, date time.Time) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		if entry.SupersededBy != nil || entry.Summarizes == nil {
			continue
		}
		if entry.Summarizes.ShiftID == shiftID && entry.Summarizes.Date.Equal(date) {
			return entry.ID, nil
		}
	}
	return "", model.ErrEntryNotFound
}

func (r *memoryEntryRepository) ExistsByOriginID(ctx context.Context, originID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		if entry.OriginID != nil && *entry.OriginID == originID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryEntryRepository) GetAnchorTimes(ctx context.Context, id string) (*AnchorTimes, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, model.NewEntryNotFoundError(id)
	}
	return &AnchorTimes{LoggedAt: entry.LoggedAt, EventAt: entry.EventAt}, nil
}

// =====================================================
// ANCHORED SEARCH
// =====================================================

func (r *memoryEntryRepository) SearchAll(ctx context.Context, q *model.QueryWithAnchor) ([]*model.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var anchorTime *time.Time
	if q.AnchorID != "" {
		anchor, ok := r.entries[q.AnchorID]
		if !ok {
			return nil, model.NewEntryNotFoundError(q.AnchorID)
		}
		t := AnchorTimes{LoggedAt: anchor.LoggedAt, EventAt: anchor.EventAt}.ForSortField(q.SortByLogDate)
		anchorTime = &t
	}

	candidates := []*model.Entry{}
	for _, entry := range r.entries {
		if matchesFilter(q, entry) {
			candidates = append(candidates, entry)
		}
	}

	sortTime := func(e *model.Entry) time.Time {
		if q.SortByLogDate {
			return e.LoggedAt
		}
		return e.EventAt
	}

	// descending on the sort field, ids break ties
	sort.Slice(candidates, func(i, j int) bool {
		ti, tj := sortTime(candidates[i]), sortTime(candidates[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return candidates[i].ID > candidates[j].ID
	})

	result := []*model.Entry{}

	if anchorTime != nil && q.ContextSize > 0 {
		block := []*model.Entry{}
		for _, e := range candidates {
			if !sortTime(e).Before(*anchorTime) {
				block = append(block, e)
			}
		}
		if len(block) > q.ContextSize {
			block = block[len(block)-q.ContextSize:]
		}
		for _, e := range block {
			result = append(result, cloneEntry(e))
		}
	}

	limit := *q.Limit
	if limit > 0 {
		count := 0
		for _, e := range candidates {
			if anchorTime != nil && !sortTime(e).Before(*anchorTime) {
				continue
			}
			// the end-date ceiling bounds only this block, never the
			// context block above the anchor
			if q.EndDate != nil && sortTime(e).After(*q.EndDate) {
				continue
			}
			result = append(result, cloneEntry(e))
			count++
			if count == limit {
				break
			}
		}
	}

	return result, nil
}

func matchesFilter(q *model.QueryWithAnchor, e *model.Entry) bool {
	if e.SupersededBy != nil {
		return false
	}
	if len(q.Logbooks) > 0 && !overlaps(e.Logbooks, q.Logbooks) {
		return false
	}
	if q.OriginID != nil && (e.OriginID == nil || *e.OriginID != *q.OriginID) {
		return false
	}
	if len(q.Tags) > 0 {
		if q.RequireAllTags {
			if !containsAll(e.Tags, q.Tags) {
				return false
			}
		} else if !overlaps(e.Tags, q.Tags) {
			return false
		}
	}
	if q.HideSummaries && e.Summarizes != nil {
		return false
	}
	if len(q.Authors) > 0 && !contains(q.Authors, e.UserName) {
		return false
	}
	if q.Search != "" && !matchesAnyWord(e, q.Search) {
		return false
	}

	t := e.EventAt
	if q.SortByLogDate {
		t = e.LoggedAt
	}
	if q.StartDate != nil && t.Before(*q.StartDate) {
		return false
	}
	return true
}

func matchesAnyWord(e *model.Entry, search string) bool {
	haystack := strings.ToLower(e.Title + " " + e.Text)
	for _, word := range strings.Fields(strings.ToLower(search)) {
		if strings.Contains(haystack, word) {
			return true
		}
	}
	return false
}

func overlaps(haystack, needles []string) bool {
	for _, n := range needles {
		if contains(haystack, n) {
			return true
		}
	}
	return false
}

func containsAll(haystack, needles []string) bool {
	for _, n := range needles {
		if !contains(haystack, n) {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
