package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attachmentRepository "elog-backend/internal/domains/attachment/repository"
	attachmentService "elog-backend/internal/domains/attachment/service"
	"elog-backend/internal/domains/entry/model"
	"elog-backend/internal/domains/entry/repository"
	logbookModel "elog-backend/internal/domains/logbook/model"
	logbookRepository "elog-backend/internal/domains/logbook/repository"
	logbookService "elog-backend/internal/domains/logbook/service"
	"elog-backend/internal/infrastructure/storage"
	"elog-backend/internal/shared"
	"elog-backend/pkg/cache"
)

type recordingEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (r *recordingEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (r *recordingEnqueuer) taskTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.tasks))
	for _, t := range r.tasks {
		types = append(types, t.Type())
	}
	return types
}

type testFixture struct {
	service     EntryService
	attachments attachmentService.AttachmentService
	enqueuer    *recordingEnqueuer
	logbookRepo logbookRepository.LogbookRepository
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	enqueuer := &recordingEnqueuer{}

	logbookRepo := logbookRepository.NewMemoryLogbookRepository()
	logbookRepository.SeedLogbook(logbookRepo, &logbookModel.Logbook{
		ID:   "lb1",
		Name: "Accelerator Operations",
		Shifts: []logbookModel.Shift{
			{ID: "shift-day", LogbookID: "lb1", Name: "Day", From: "08:00", To: "15:59"},
			{ID: "shift-night", LogbookID: "lb1", Name: "Night", From: "16:00", To: "07:59"},
		},
		Tags: []logbookModel.Tag{
			{ID: "tag-rf", LogbookID: "lb1", Name: "rf"},
			{ID: "tag-vacuum", LogbookID: "lb1", Name: "vacuum"},
		},
	})
	logbookRepository.SeedLogbook(logbookRepo, &logbookModel.Logbook{
		ID:   "lb2",
		Name: "Cryogenics",
	})

	attachments := attachmentService.NewAttachmentService(
		attachmentRepository.NewMemoryAttachmentRepository(),
		storage.NewMemoryBlobStorage(),
		storage.NewPreviewProcessor(),
		enqueuer,
	)

	svc := NewEntryService(
		repository.NewMemoryEntryRepository(),
		logbookService.NewLogbookService(logbookRepo),
		attachments,
		cache.NewMemoryCache(),
		enqueuer,
	)

	return &testFixture{
		service:     svc,
		attachments: attachments,
		enqueuer:    enqueuer,
		logbookRepo: logbookRepo,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

var testCreator = model.Creator{FirstName: "Grace", LastName: "Hopper", UserName: "ghopper"}

func newDraft(title, text string) *model.NewEntryRequest {
	return &model.NewEntryRequest{
		Logbooks: []string{"lb1"},
		Title:    title,
		Text:     strPtr(text),
	}
}

func refTo(id string) string {
	return fmt.Sprintf(`<p>see <elog-entry-ref id="%s"></elog-entry-ref></p>`, id)
}

// =====================================================
// CREATE
// =====================================================

func TestCreateNewAndGetFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.service.CreateNew(ctx, newDraft("A", "t"), testCreator)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	full, err := f.service.GetFull(ctx, id, model.ExpandOptions{})
	require.NoError(t, err)
	assert.Equal(t, "A", full.Title)
	assert.Equal(t, "t", full.Text)
	assert.Equal(t, "Grace Hopper", full.LoggedBy)
	assert.Equal(t, "ghopper", full.UserName)
	assert.False(t, full.IsEmpty)
	assert.Empty(t, full.FollowUps)
	assert.Empty(t, full.References)
}

func TestCreateNewValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		draft *model.NewEntryRequest
	}{
		{
			name:  "no logbooks",
			draft: &model.NewEntryRequest{Title: "A", Text: strPtr("t")},
		},
		{
			name:  "empty title",
			draft: &model.NewEntryRequest{Logbooks: []string{"lb1"}, Text: strPtr("t")},
		},
		{
			name:  "nil body",
			draft: &model.NewEntryRequest{Logbooks: []string{"lb1"}, Title: "A"},
		},
		{
			name:  "unknown logbook",
			draft: &model.NewEntryRequest{Logbooks: []string{"nope"}, Title: "A", Text: strPtr("t")},
		},
		{
			name: "tag of another logbook",
			draft: &model.NewEntryRequest{
				Logbooks: []string{"lb2"},
				Tags:     []string{"tag-rf"},
				Title:    "A",
				Text:     strPtr("t"),
			},
		},
		{
			name: "missing attachment",
			draft: &model.NewEntryRequest{
				Logbooks:    []string{"lb1"},
				Title:       "A",
				Text:        strPtr("t"),
				Attachments: []string{"no-such-attachment"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateNew(ctx, tt.draft, testCreator)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestCreateNewChecksLogbooksBeforeContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// a draft broken in two ways reports the logbook problem, the
	// title/body checks only run once the referenced resources exist
	draft := &model.NewEntryRequest{Logbooks: []string{"nope"}, Text: strPtr("t")}
	_, err := f.service.CreateNew(ctx, draft, testCreator)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "the logbook with id 'nope' has not been found")

	// with a known logbook the same draft fails on the missing title
	draft.Logbooks = []string{"lb1"}
	_, err = f.service.CreateNew(ctx, draft, testCreator)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "title")
}

func TestCreateNewEmptyBodyAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.service.CreateNew(ctx, newDraft("A", ""), testCreator)
	require.NoError(t, err)

	full, err := f.service.GetFull(ctx, id, model.ExpandOptions{})
	require.NoError(t, err)
	assert.True(t, full.IsEmpty)
}

func TestCreateNewWithAttachmentAndTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	attachmentID, err := f.attachments.Create(ctx, "plot.png", "image/png", []byte("not-really-a-png"))
	require.NoError(t, err)

	draft := newDraft("With attachment", "t")
	draft.Tags = []string{"tag-rf"}
	draft.Attachments = []string{attachmentID}

	id, err := f.service.CreateNew(ctx, draft, testCreator)
	require.NoError(t, err)

	full, err := f.service.GetFull(ctx, id, model.ExpandOptions{})
	require.NoError(t, err)
	require.Len(t, full.Attachments, 1)
	assert.Equal(t, "plot.png", full.Attachments[0].FileName)
	assert.Equal(t, []string{"tag-rf"}, full.Tags)
}

func TestCreateNewDuplicateOrigin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := newDraft("Imported", "t")
	draft.OriginID = strPtr("legacy-42")
	_, err := f.service.CreateNew(ctx, draft, testCreator)
	require.NoError(t, err)

	again := newDraft("Imported again", "t")
	again.OriginID = strPtr("legacy-42")
	_, err = f.service.CreateNew(ctx, again, testCreator)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrDuplicateOrigin)

	exists, err := f.service.ExistsByOriginID(ctx, "legacy-42")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateNewNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft := newDraft("Notify", "t")
	draft.UserIDsToNotify = []string{"ops@example.org"}
	_, err := f.service.CreateNew(ctx, draft, testCreator)
	require.NoError(t, err)

	assert.Contains(t, f.enqueuer.taskTypes(), shared.TypeSendEntryNotification)
}

// =====================================================
// SUMMARIES
// =====================================================

func TestCreateSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	draft := newDraft("Day shift summary", "all quiet")
	draft.Summarizes = &model.Summarizes{ShiftID: "shift-day", Date: date}

	id, err := f.service.CreateNew(ctx, draft, testCreator)
	require.NoError(t, err)

	foundID, err := f.service.FindSummaryID(ctx, "shift-day", date)
	require.NoError(t, err)
	assert.Equal(t, id, foundID)

	// one summary per shift occurrence
	second := newDraft("Another summary", "t")
	second.Summarizes = &model.Summarizes{ShiftID: "shift-day", Date: date}
	_, err = f.service.CreateNew(ctx, second, testCreator)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCreateSummaryValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	t.Run("logbook without shifts", func(t *testing.T) {
		draft := &model.NewEntryRequest{
			Logbooks:   []string{"lb2"},
			Title:      "S",
			Text:       strPtr("t"),
			Summarizes: &model.Summarizes{ShiftID: "shift-day", Date: date},
		}
		_, err := f.service.CreateNew(ctx, draft, testCreator)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("unknown shift", func(t *testing.T) {
		draft := newDraft("S", "t")
		draft.Summarizes = &model.Summarizes{ShiftID: "shift-owl", Date: date}
		_, err := f.service.CreateNew(ctx, draft, testCreator)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrShiftNotFound)
	})

	t.Run("missing date", func(t *testing.T) {
		draft := newDraft("S", "t")
		draft.Summarizes = &model.Summarizes{ShiftID: "shift-day"}
		_, err := f.service.CreateNew(ctx, draft, testCreator)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrValidation)
	})

	t.Run("two logbooks", func(t *testing.T) {
		draft := newDraft("S", "t")
		draft.Logbooks = []string{"lb1", "lb2"}
		draft.Summarizes = &model.Summarizes{ShiftID: "shift-day", Date: date}
		_, err := f.service.CreateNew(ctx, draft, testCreator)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrValidation)
	})
}

// =====================================================
// SUPERSEDE
// =====================================================

func TestCreateSupersede(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	eventAt := time.Date(2026, 1, 10, 12, 30, 0, 0, time.UTC)
	draft := newDraft("v1", "first version")
	draft.EventAt = &eventAt
	id1, err := f.service.CreateNew(ctx, draft, testCreator)
	require.NoError(t, err)

	// give the original a follow-up so inheritance is observable
	fuID, err := f.service.CreateFollowUp(ctx, id1, newDraft("follow", "f"), testCreator)
	require.NoError(t, err)

	id2, err := f.service.CreateSupersede(ctx, id1, newDraft("v2", "second version"), testCreator)
	require.NoError(t, err)

	old, err := f.service.GetFull(ctx, id1, model.ExpandOptions{SupersededBy: true})
	require.NoError(t, err)
	require.NotNil(t, old.SupersededBy)
	assert.Equal(t, id2, old.SupersededBy.ID)

	// the new version carries the thread and the temporal identity
	updated, err := f.service.GetFull(ctx, id2, model.ExpandOptions{FollowUps: true, History: true})
	require.NoError(t, err)
	assert.Equal(t, eventAt, updated.EventAt)
	require.Len(t, updated.FollowUps, 1)
	assert.Equal(t, fuID, updated.FollowUps[0].ID)
	require.Len(t, updated.History, 1)
	assert.Equal(t, id1, updated.History[0].ID)
}

func TestDoubleSupersedeFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id1, err := f.service.CreateNew(ctx, newDraft("v1", "t"), testCreator)
	require.NoError(t, err)
	_, err = f.service.CreateSupersede(ctx, id1, newDraft("v2", "t"), testCreator)
	require.NoError(t, err)

	_, err = f.service.CreateSupersede(ctx, id1, newDraft("v3", "t"), testCreator)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrAlreadySuperseded)
}

func TestSupersedeMissingEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateSupersede(ctx, "no-such-id", newDraft("v2", "t"), testCreator)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrEntryNotFound)
}

func TestSupersedeChainHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id1, err := f.service.CreateNew(ctx, newDraft("v1", "t"), testCreator)
	require.NoError(t, err)
	id2, err := f.service.CreateSupersede(ctx, id1, newDraft("v2", "t"), testCreator)
	require.NoError(t, err)
	id3, err := f.service.CreateSupersede(ctx, id2, newDraft("v3", "t"), testCreator)
	require.NoError(t, err)

	full, err := f.service.GetFull(ctx, id3, model.ExpandOptions{History: true})
	require.NoError(t, err)
	require.Len(t, full.History, 2)
	assert.Equal(t, id2, full.History[0].ID)
	assert.Equal(t, id1, full.History[1].ID)
}

// =====================================================
// REFERENCES
// =====================================================

func TestReferencesBothDirections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id1, err := f.service.CreateNew(ctx, newDraft("target", "t"), testCreator)
	require.NoError(t, err)

	id2, err := f.service.CreateNew(ctx, newDraft("referrer", refTo(id1)), testCreator)
	require.NoError(t, err)

	referrer, err := f.service.GetFull(ctx, id2, model.ExpandOptions{References: true})
	require.NoError(t, err)
	require.Len(t, referrer.References, 1)
	assert.Equal(t, id1, referrer.References[0].ID)
	assert.True(t, referrer.ReferencesInBody)

	target, err := f.service.GetFull(ctx, id1, model.ExpandOptions{ReferencedBy: true})
	require.NoError(t, err)
	require.Len(t, target.ReferencedByEntries, 1)
	assert.Equal(t, id2, target.ReferencedByEntries[0].ID)

	summaries, err := f.service.GetReferences(ctx, id1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, id2, summaries[0].ID)
}

func TestDanglingReferencesDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.service.CreateNew(ctx, newDraft("referrer", refTo("ghost-id")), testCreator)
	require.NoError(t, err)

	full, err := f.service.GetFull(ctx, id, model.ExpandOptions{References: true})
	require.NoError(t, err)
	assert.Empty(t, full.References)
	// the marker is still in the body even though it was not indexed
	assert.True(t, full.ReferencesInBody)
}

func TestSupersedeRewritesReferrers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id1, err := f.service.CreateNew(ctx, newDraft("target", "t"), testCreator)
	require.NoError(t, err)
	id2, err := f.service.CreateNew(ctx, newDraft("referrer", refTo(id1)), testCreator)
	require.NoError(t, err)

	// supersede the target: the referrer must be repointed
	id1b, err := f.service.CreateSupersede(ctx, id1, newDraft("target v2", "t2"), testCreator)
	require.NoError(t, err)

	newTarget, err := f.service.GetFull(ctx, id1b, model.ExpandOptions{ReferencedBy: true})
	require.NoError(t, err)
	require.Len(t, newTarget.ReferencedByEntries, 1)
	assert.Equal(t, id2, newTarget.ReferencedByEntries[0].ID)

	// the old target keeps no live referrers
	oldTarget, err := f.service.GetFull(ctx, id1, model.ExpandOptions{ReferencedBy: true})
	require.NoError(t, err)
	assert.Empty(t, oldTarget.ReferencedByEntries)

	// the referrer body markup now cites the new id
	referrer, err := f.service.GetFull(ctx, id2, model.ExpandOptions{References: true})
	require.NoError(t, err)
	assert.Contains(t, referrer.Text, id1b)
	assert.NotContains(t, referrer.Text, fmt.Sprintf(`id="%s"`, id1))
	require.Len(t, referrer.References, 1)
	assert.Equal(t, id1b, referrer.References[0].ID)
}

func TestSupersedeReferrerUpdatesReverseIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id1, err := f.service.CreateNew(ctx, newDraft("target", "t"), testCreator)
	require.NoError(t, err)
	id2, err := f.service.CreateNew(ctx, newDraft("referrer", refTo(id1)), testCreator)
	require.NoError(t, err)

	// supersede the REFERRER: the target's referencedBy must follow
	id2b, err := f.service.CreateSupersede(ctx, id2, newDraft("referrer v2", refTo(id1)), testCreator)
	require.NoError(t, err)

	target, err := f.service.GetFull(ctx, id1, model.ExpandOptions{ReferencedBy: true})
	require.NoError(t, err)
	require.Len(t, target.ReferencedByEntries, 1)
	assert.Equal(t, id2b, target.ReferencedByEntries[0].ID)
}

// =====================================================
// FOLLOW-UPS
// =====================================================

func TestFollowUps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parentID, err := f.service.CreateNew(ctx, newDraft("parent", "t"), testCreator)
	require.NoError(t, err)

	fu1, err := f.service.CreateFollowUp(ctx, parentID, newDraft("first", "t"), testCreator)
	require.NoError(t, err)
	fu2, err := f.service.CreateFollowUp(ctx, parentID, newDraft("second", "t"), testCreator)
	require.NoError(t, err)

	followUps, err := f.service.GetFollowUps(ctx, parentID)
	require.NoError(t, err)
	require.Len(t, followUps, 2)
	assert.Equal(t, fu1, followUps[0].ID)
	assert.Equal(t, fu2, followUps[1].ID)

	// reverse direction
	child, err := f.service.GetFull(ctx, fu1, model.ExpandOptions{FollowingUp: true})
	require.NoError(t, err)
	require.NotNil(t, child.FollowingUpEntry)
	assert.Equal(t, parentID, child.FollowingUpEntry.ID)

	_, err = f.service.CreateFollowUp(ctx, "no-such-id", newDraft("x", "t"), testCreator)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrEntryNotFound)
}

// =====================================================
// ANCHORED SEARCH
// =====================================================

func seedSequence(t *testing.T, f *testFixture, n int) []string {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		eventAt := base.Add(time.Duration(i) * time.Minute)
		draft := newDraft(fmt.Sprintf("entry %03d", i), "t")
		draft.Note = fmt.Sprintf("%d", i)
		draft.EventAt = &eventAt
		id, err := f.service.CreateNew(ctx, draft, testCreator)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestSearchAllNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := seedSequence(t, f, 100)

	page, err := f.service.SearchAll(ctx, &model.QueryWithAnchor{Limit: intPtr(10)})
	require.NoError(t, err)
	require.Len(t, page, 10)
	for i := 0; i < 10; i++ {
		assert.Equal(t, ids[99-i], page[i].ID)
	}
	for i := 1; i < len(page); i++ {
		assert.True(t, page[i].EventAt.Before(page[i-1].EventAt))
	}
}

func TestSearchAllAnchoredNextPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := seedSequence(t, f, 100)

	page, err := f.service.SearchAll(ctx, &model.QueryWithAnchor{
		AnchorID: ids[50],
		Limit:    intPtr(10),
	})
	require.NoError(t, err)
	require.Len(t, page, 10)
	for i := 0; i < 10; i++ {
		assert.Equal(t, ids[49-i], page[i].ID)
	}
}

func TestSearchAllContextAroundAnchor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := seedSequence(t, f, 100)

	page, err := f.service.SearchAll(ctx, &model.QueryWithAnchor{
		AnchorID:    ids[50],
		ContextSize: 5,
		Limit:       intPtr(5),
	})
	require.NoError(t, err)
	require.Len(t, page, 10)

	// context block 54..50 then next block 49..45, anchor exactly once
	want := []int{54, 53, 52, 51, 50, 49, 48, 47, 46, 45}
	seen := map[string]int{}
	for i, idx := range want {
		assert.Equal(t, ids[idx], page[i].ID)
		seen[page[i].ID]++
	}
	assert.Equal(t, 1, seen[ids[50]])
}

func TestSearchAllEndDateBoundsOnlyThePageBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := seedSequence(t, f, 10)

	// endDate equals the anchor's event time: the page below the anchor is
	// capped, but the context above the anchor still shows what follows it
	endDate := time.Date(2026, 2, 1, 0, 5, 0, 0, time.UTC)
	page, err := f.service.SearchAll(ctx, &model.QueryWithAnchor{
		AnchorID:    ids[5],
		ContextSize: 3,
		Limit:       intPtr(1),
		EndDate:     &endDate,
	})
	require.NoError(t, err)
	require.Len(t, page, 4)

	want := []int{7, 6, 5, 4}
	for i, idx := range want {
		assert.Equal(t, ids[idx], page[i].ID)
	}
}

func TestSearchAllValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.SearchAll(ctx, &model.QueryWithAnchor{})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.service.SearchAll(ctx, &model.QueryWithAnchor{ContextSize: 5, Limit: intPtr(5)})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.service.SearchAll(ctx, &model.QueryWithAnchor{Limit: intPtr(5), LastNShifts: intPtr(0)})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSearchAllExcludesSuperseded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id1, err := f.service.CreateNew(ctx, newDraft("v1", "t"), testCreator)
	require.NoError(t, err)
	id2, err := f.service.CreateSupersede(ctx, id1, newDraft("v2", "t"), testCreator)
	require.NoError(t, err)

	page, err := f.service.SearchAll(ctx, &model.QueryWithAnchor{Limit: intPtr(10)})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, id2, page[0].ID)
}

func TestSearchAllFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tagged := newDraft("tagged", "vacuum pressure spike")
	tagged.Tags = []string{"tag-vacuum"}
	taggedID, err := f.service.CreateNew(ctx, tagged, testCreator)
	require.NoError(t, err)

	plainID, err := f.service.CreateNew(ctx, newDraft("plain", "nothing to report"), testCreator)
	require.NoError(t, err)

	byTag, err := f.service.SearchAll(ctx, &model.QueryWithAnchor{
		Limit: intPtr(10),
		Tags:  []string{"tag-vacuum"},
	})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, taggedID, byTag[0].ID)

	byText, err := f.service.SearchAll(ctx, &model.QueryWithAnchor{
		Limit:  intPtr(10),
		Search: "report",
	})
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, plainID, byText[0].ID)

	byAuthor, err := f.service.SearchAll(ctx, &model.QueryWithAnchor{
		Limit:   intPtr(10),
		Authors: []string{"nobody"},
	})
	require.NoError(t, err)
	assert.Empty(t, byAuthor)
}

func TestSearchAllHideSummaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	summary := newDraft("summary", "t")
	summary.Summarizes = &model.Summarizes{
		ShiftID: "shift-day",
		Date:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	_, err := f.service.CreateNew(ctx, summary, testCreator)
	require.NoError(t, err)

	plainID, err := f.service.CreateNew(ctx, newDraft("plain", "t"), testCreator)
	require.NoError(t, err)

	page, err := f.service.SearchAll(ctx, &model.QueryWithAnchor{
		Limit:         intPtr(10),
		HideSummaries: true,
	})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, plainID, page[0].ID)
}

func TestGetFullIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.service.CreateNew(ctx, newDraft("A", "t"), testCreator)
	require.NoError(t, err)

	first, err := f.service.GetFull(ctx, id, model.ExpandOptions{})
	require.NoError(t, err)
	second, err := f.service.GetFull(ctx, id, model.ExpandOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
