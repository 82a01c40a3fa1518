package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elog-backend/internal/domains/entry/model"
)

func seedEntry(t *testing.T, repo EntryRepository, id string) *model.Entry {
	t.Helper()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	entry := &model.Entry{
		ID:       id,
		Logbooks: []string{"lb1"},
		Title:    "seed " + id,
		UserName: "ghopper",
		LoggedAt: now,
		EventAt:  now,
		Version:  1,
	}
	require.NoError(t, repo.Insert(context.Background(), entry))
	return entry
}

func TestSetSupersededByIsWriteOnce(t *testing.T) {
	repo := NewMemoryEntryRepository()
	ctx := context.Background()
	seedEntry(t, repo, "old")
	seedEntry(t, repo, "v2")
	seedEntry(t, repo, "v3")

	require.NoError(t, repo.SetSupersededBy(ctx, "old", "v2"))

	// second writer passed every check before the first one committed;
	// the conditional update is the real guard
	err := repo.SetSupersededBy(ctx, "old", "v3")
	assert.ErrorIs(t, err, model.ErrAlreadySuperseded)

	entry, err := repo.FindByID(ctx, "old")
	require.NoError(t, err)
	require.NotNil(t, entry.SupersededBy)
	assert.Equal(t, "v2", *entry.SupersededBy)
}

func TestSetSupersededByMissingEntry(t *testing.T) {
	repo := NewMemoryEntryRepository()

	err := repo.SetSupersededBy(context.Background(), "ghost", "v2")
	assert.ErrorIs(t, err, model.ErrEntryNotFound)
}

func TestSetSupersededByConcurrentWriters(t *testing.T) {
	repo := NewMemoryEntryRepository()
	ctx := context.Background()
	seedEntry(t, repo, "old")

	const writers = 8
	results := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		newID := fmt.Sprintf("v%d", i)
		seedEntry(t, repo, newID)
		wg.Add(1)
		go func(i int, newID string) {
			defer wg.Done()
			results[i] = repo.SetSupersededBy(ctx, "old", newID)
		}(i, newID)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, model.ErrAlreadySuperseded)
		}
	}
	assert.Equal(t, 1, winners)

	entry, err := repo.FindByID(ctx, "old")
	require.NoError(t, err)
	assert.NotNil(t, entry.SupersededBy)
}
