package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elog-backend/internal/domains/logbook/model"
	"elog-backend/internal/domains/logbook/repository"
)

func newService(t *testing.T) Service {
	t.Helper()

	repo := repository.NewMemoryLogbookRepository()
	repository.SeedLogbook(repo, &model.Logbook{
		ID:   "lb1",
		Name: "Accelerator Operations",
		Shifts: []model.Shift{
			{ID: "shift-day", LogbookID: "lb1", Name: "Day", From: "08:00", To: "15:59"},
			{ID: "shift-night", LogbookID: "lb1", Name: "Night", From: "16:00", To: "07:59"},
		},
		Tags: []model.Tag{
			{ID: "tag-rf", LogbookID: "lb1", Name: "rf"},
		},
	})
	repository.SeedLogbook(repo, &model.Logbook{
		ID:   "lb2",
		Name: "Cryogenics",
	})

	return NewLogbookService(repo)
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
}

func TestExistsByID(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	exists, err := svc.ExistsByID(ctx, "lb1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.ExistsByID(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFindShiftByTimeOfDay(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		t     time.Time
		shift string
	}{
		{"mid morning", at(9, 30), "Day"},
		{"day start boundary", at(8, 0), "Day"},
		{"day end boundary", at(15, 59), "Day"},
		{"evening", at(16, 0), "Night"},
		{"after midnight wraps into night", at(2, 0), "Night"},
		{"night end boundary", at(7, 59), "Night"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shift, err := svc.FindShiftByTimeOfDay(ctx, "lb1", tc.t)
			require.NoError(t, err)
			require.NotNil(t, shift)
			assert.Equal(t, tc.shift, shift.Name)
		})
	}
}

func TestFindShiftByTimeOfDayNoShifts(t *testing.T) {
	svc := newService(t)

	shift, err := svc.FindShiftByTimeOfDay(context.Background(), "lb2", at(12, 0))
	require.NoError(t, err)
	assert.Nil(t, shift)
}

func TestTagBelongsToAny(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	ok, err := svc.TagBelongsToAny(ctx, "tag-rf", []string{"lb1", "lb2"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.TagBelongsToAny(ctx, "tag-rf", []string{"lb2"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.TagBelongsToAny(ctx, "tag-unknown", []string{"lb1"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindEarliestStartForLastNShifts(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	end := at(12, 0)

	// occurrences before noon, newest first: today 08:00, yesterday
	// 16:00, yesterday 08:00, ...
	start, err := svc.FindEarliestStartForLastNShifts(ctx, 1, []string{"lb1"}, end)
	require.NoError(t, err)
	assert.Equal(t, at(8, 0), start)

	start, err = svc.FindEarliestStartForLastNShifts(ctx, 2, []string{"lb1"}, end)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 9, 16, 0, 0, 0, time.UTC), start)

	start, err = svc.FindEarliestStartForLastNShifts(ctx, 3, []string{"lb1"}, end)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC), start)
}

func TestFindEarliestStartForLastNShiftsNoShifts(t *testing.T) {
	svc := newService(t)

	_, err := svc.FindEarliestStartForLastNShifts(context.Background(), 2, []string{"lb2"}, at(12, 0))
	assert.ErrorIs(t, err, model.ErrShiftNotFound)
}
