package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	attachmentService "elog-backend/internal/domains/attachment/service"
	"elog-backend/internal/domains/entry/model"
	"elog-backend/internal/domains/entry/reference"
	"elog-backend/internal/domains/entry/repository"
	logbookService "elog-backend/internal/domains/logbook/service"
	"elog-backend/internal/shared"
	"elog-backend/pkg/cache"
	"elog-backend/pkg/logger"
)

const (
	cacheKeyFull      = "entries:full:%s"
	cacheKeyReferrers = "entries:referrers:%s"
	cacheTTL          = 10 * time.Minute
)

type entryService struct {
	repo        repository.EntryRepository
	logbooks    logbookService.Service
	attachments attachmentService.AttachmentService
	cache       cache.Cache
	asynq       shared.Enqueuer
}

func NewEntryService(
	repo repository.EntryRepository,
	logbooks logbookService.Service,
	attachments attachmentService.AttachmentService,
	cacheClient cache.Cache,
	asynqClient shared.Enqueuer,
) EntryService {
	return &entryService{
		repo:        repo,
		logbooks:    logbooks,
		attachments: attachments,
		cache:       cacheClient,
		asynq:       asynqClient,
	}
}

// =====================================================
// CREATE
// =====================================================

func (s *entryService) CreateNew(ctx context.Context, req *model.NewEntryRequest, creator model.Creator) (string, error) {
	entry := s.buildEntry(req, creator)
	return s.createEntry(ctx, entry, req, "")
}

// buildEntry turns a draft into a persistable entity. The server owns
// loggedAt; eventAt defaults to it when the draft has none.
func (s *entryService) buildEntry(req *model.NewEntryRequest, creator model.Creator) *model.Entry {
	now := time.Now().UTC()
	eventAt := now
	if req.EventAt != nil {
		eventAt = req.EventAt.UTC()
	}

	// content checks run later in the chain, after the logbook, attachment
	// and tag lookups
	text := ""
	if req.Text != nil {
		text = *req.Text
	}

	entry := &model.Entry{
		ID:              uuid.NewString(),
		OriginID:        req.OriginID,
		Logbooks:        append([]string{}, req.Logbooks...),
		Tags:            append([]string{}, req.Tags...),
		Title:           strings.TrimSpace(req.Title),
		Text:            text,
		Note:            req.Note,
		FirstName:       creator.FirstName,
		LastName:        creator.LastName,
		UserName:        creator.UserName,
		FollowUps:       []string{},
		References:      []string{},
		Attachments:     append([]string{}, req.Attachments...),
		LoggedAt:        now,
		EventAt:         eventAt,
		UserIDsToNotify: append([]string{}, req.UserIDsToNotify...),
	}
	if req.Summarizes != nil {
		d := req.Summarizes.Date
		entry.Summarizes = &model.Summarizes{
			ShiftID: req.Summarizes.ShiftID,
			Date:    time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		}
	}
	return entry
}

// createEntry runs the full validation chain and persists. Shared by the
// three creation paths. A non-empty parentID links the new entry as a
// follow-up atomically with the insert.
func (s *entryService) createEntry(ctx context.Context, entry *model.Entry, req *model.NewEntryRequest, parentID string) (string, error) {
	if entry.Summarizes != nil {
		if err := s.checkForSummarization(ctx, entry); err != nil {
			return "", err
		}
	} else {
		for _, logbookID := range entry.Logbooks {
			exists, err := s.logbooks.ExistsByID(ctx, logbookID)
			if err != nil {
				return "", fmt.Errorf("failed to check logbook %s: %w", logbookID, err)
			}
			if !exists {
				return "", model.NewValidationError(
					fmt.Sprintf("the logbook with id '%s' has not been found", logbookID))
			}
		}
	}

	if entry.OriginID != nil {
		exists, err := s.repo.ExistsByOriginID(ctx, *entry.OriginID)
		if err != nil {
			return "", fmt.Errorf("failed to check origin id: %w", err)
		}
		if exists {
			return "", model.NewDuplicateOriginError(*entry.OriginID)
		}
	}

	if len(entry.Attachments) > 0 {
		missing, err := s.attachments.MissingIDs(ctx, entry.Attachments)
		if err != nil {
			return "", fmt.Errorf("failed to check attachments: %w", err)
		}
		if len(missing) > 0 {
			return "", model.NewValidationError(
				fmt.Sprintf("the attachment id '%s' has not been found", missing[0]))
		}
	}

	for _, tagID := range entry.Tags {
		ok, err := s.logbooks.TagBelongsToAny(ctx, tagID, entry.Logbooks)
		if err != nil {
			return "", fmt.Errorf("failed to check tag %s: %w", tagID, err)
		}
		if !ok {
			return "", model.NewValidationError(
				fmt.Sprintf("the tag id '%s' doesn't belong to any logbook of the entry", tagID))
		}
	}

	if err := req.Validate(); err != nil {
		return "", model.NewValidationError(err.Error())
	}

	// dangling reference ids are dropped at write time, only existing
	// entries end up in the index
	referenceIDs := reference.ExtractIDs(entry.Text)
	existing, err := s.repo.FilterExistingIDs(ctx, referenceIDs)
	if err != nil {
		return "", fmt.Errorf("failed to filter references: %w", err)
	}
	entry.References = existing

	if parentID != "" {
		err = s.repo.InsertFollowUp(ctx, entry, parentID)
	} else {
		err = s.repo.Insert(ctx, entry)
	}
	if err != nil {
		return "", err
	}
	logger.Info("New entry created", map[string]interface{}{
		"entry_id": entry.ID,
		"title":    entry.Title,
	})

	s.notifyBestEffort(entry)
	s.invalidateEntries(ctx, append(append([]string{}, entry.References...), entry.ID))

	return entry.ID, nil
}

// checkForSummarization validates the shift summary fields against the
// single target logbook and refuses a second summary for the same shift
// occurrence.
func (s *entryService) checkForSummarization(ctx context.Context, entry *model.Entry) error {
	if len(entry.Logbooks) != 1 {
		return model.NewValidationError("a summary entry must belong to exactly one logbook")
	}

	lb, err := s.logbooks.GetByID(ctx, entry.Logbooks[0])
	if err != nil {
		return model.NewValidationError(
			fmt.Sprintf("the logbook with id '%s' has not been found", entry.Logbooks[0]))
	}
	if len(lb.Shifts) == 0 {
		return model.NewValidationError("the logbook has not any shift")
	}
	if entry.Summarizes.ShiftID == "" {
		return model.NewValidationError("shift name is mandatory on summarizes object")
	}
	if entry.Summarizes.Date.IsZero() {
		return model.NewValidationError("shift date is mandatory on summarizes object")
	}

	found := false
	for _, shift := range lb.Shifts {
		if strings.EqualFold(shift.ID, entry.Summarizes.ShiftID) {
			found = true
			break
		}
	}
	if !found {
		return model.NewShiftNotFoundError(entry.Summarizes.ShiftID)
	}

	_, err = s.repo.FindSummaryID(ctx, entry.Summarizes.ShiftID, entry.Summarizes.Date)
	if err == nil {
		return model.NewValidationError(
			fmt.Sprintf("a summary already exists for shift '%s' on the given date", entry.Summarizes.ShiftID))
	}
	if !isNotFound(err) {
		return fmt.Errorf("failed to check existing summary: %w", err)
	}
	return nil
}

func (s *entryService) CreateSupersede(ctx context.Context, id string, req *model.NewEntryRequest, creator model.Creator) (string, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if existing.SupersededBy != nil {
		return "", model.NewAlreadySupersededError(id)
	}

	entry := s.buildEntry(req, creator)
	// the new version takes over the thread and keeps the temporal
	// identity of the original event
	entry.FollowUps = append([]string{}, existing.FollowUps...)
	entry.EventAt = existing.EventAt

	newID, err := s.createEntry(ctx, entry, req, "")
	if err != nil {
		return "", err
	}

	rewritten := s.rewriteReferrers(ctx, id, newID)

	if err := s.repo.SetSupersededBy(ctx, id, newID); err != nil {
		return "", err
	}
	logger.Info("New supersede created", map[string]interface{}{
		"entry_id": id,
		"new_id":   newID,
	})

	affected := append([]string{id, newID}, entry.References...)
	affected = append(affected, rewritten...)
	s.invalidateEntries(ctx, affected)

	return newID, nil
}

// rewriteReferrers repoints every live referrer of oldID at newID, in both
// the stored reference list and the raw body markup. Each referrer is an
// independent update: one failure is logged and the rest still proceed, a
// not-yet-rewritten referrer keeps pointing at the old entry, which still
// resolves.
func (s *entryService) rewriteReferrers(ctx context.Context, oldID, newID string) []string {
	referrers, err := s.repo.FindReferrers(ctx, oldID)
	if err != nil {
		logger.Error("Failed to load referrers for rewrite", err)
		return nil
	}

	rewritten := make([]string, 0, len(referrers))
	for _, referrer := range referrers {
		newText := reference.RewriteID(referrer.Text, oldID, newID)
		newRefs := make([]string, 0, len(referrer.References))
		for _, ref := range referrer.References {
			if ref == oldID {
				ref = newID
			}
			newRefs = append(newRefs, ref)
		}
		if err := s.repo.UpdateBodyAndReferences(ctx, referrer.ID, newText, newRefs); err != nil {
			logger.Error("Failed to rewrite referrer", err)
			continue
		}
		rewritten = append(rewritten, referrer.ID)
	}
	return rewritten
}

func (s *entryService) CreateFollowUp(ctx context.Context, id string, req *model.NewEntryRequest, creator model.Creator) (string, error) {
	parent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}

	entry := s.buildEntry(req, creator)
	newID, err := s.createEntry(ctx, entry, req, parent.ID)
	if err != nil {
		return "", err
	}
	logger.Info("New follow-up created", map[string]interface{}{
		"entry_id": parent.ID,
		"new_id":   newID,
	})

	s.invalidateEntries(ctx, append([]string{parent.ID, newID}, entry.References...))

	return newID, nil
}

// =====================================================
// READS
// =====================================================

func (s *entryService) GetFull(ctx context.Context, id string, opts model.ExpandOptions) (*model.EntryResponse, error) {
	noExpansions := opts == model.ExpandOptions{}
	cacheKey := fmt.Sprintf(cacheKeyFull, id)
	if noExpansions {
		var cached model.EntryResponse
		if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
			return &cached, nil
		}
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	summary, err := s.toSummary(ctx, entry)
	if err != nil {
		return nil, err
	}
	result := &model.EntryResponse{
		EntrySummaryResponse: *summary,
		Text:                 entry.Text,
		Note:                 entry.Note,
		FollowUps:            []model.EntrySummaryResponse{},
		History:              []model.EntrySummaryResponse{},
		References:           []model.EntrySummaryResponse{},
		ReferencedByEntries:  []model.EntrySummaryResponse{},
	}

	if opts.FollowUps {
		followUps, err := s.repo.FindAllByIDIn(ctx, entry.FollowUps)
		if err != nil {
			return nil, err
		}
		result.FollowUps, err = s.toSummaries(ctx, followUps)
		if err != nil {
			return nil, err
		}
	}

	if opts.FollowingUp {
		parent, err := s.repo.FindFollowingUp(ctx, id)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			parentSummary, err := s.toSummary(ctx, parent)
			if err != nil {
				return nil, err
			}
			result.FollowingUpEntry = parentSummary
		}
	}

	if opts.History {
		history, err := s.walkHistory(ctx, id)
		if err != nil {
			return nil, err
		}
		result.History = history
	}

	if opts.References {
		resolved, err := s.repo.FindAllByIDIn(ctx, entry.References)
		if err != nil {
			return nil, err
		}
		if len(resolved) != len(entry.References) {
			missing := firstMissingID(entry.References, resolved)
			corruption := model.NewIndexCorruptionError(id, missing)
			logger.Error("Reference index corruption detected", corruption)
			return nil, corruption
		}
		result.References, err = s.toSummaries(ctx, resolved)
		if err != nil {
			return nil, err
		}
	}

	if opts.ReferencedBy {
		referrers, err := s.repo.FindReferrers(ctx, id)
		if err != nil {
			return nil, err
		}
		result.ReferencedByEntries, err = s.toSummaries(ctx, referrers)
		if err != nil {
			return nil, err
		}
	}

	if opts.SupersededBy && entry.SupersededBy != nil {
		successor, err := s.repo.FindByID(ctx, *entry.SupersededBy)
		if err != nil {
			return nil, err
		}
		successorSummary, err := s.toSummary(ctx, successor)
		if err != nil {
			return nil, err
		}
		result.SupersededBy = successorSummary
	}

	if noExpansions {
		if err := s.cache.Set(ctx, cacheKey, result, cacheTTL); err != nil {
			logger.Debug("Failed to cache entry " + id)
		}
	}
	return result, nil
}

// walkHistory follows the supersede chain backwards, newest to oldest,
// excluding the entry itself.
func (s *entryService) walkHistory(ctx context.Context, id string) ([]model.EntrySummaryResponse, error) {
	history := []model.EntrySummaryResponse{}
	current := id
	for {
		previous, err := s.repo.FindBySupersededBy(ctx, current)
		if err != nil {
			return nil, err
		}
		if previous == nil {
			return history, nil
		}
		summary, err := s.toSummary(ctx, previous)
		if err != nil {
			return nil, err
		}
		history = append(history, *summary)
		current = previous.ID
	}
}

func (s *entryService) SearchAll(ctx context.Context, q *model.QueryWithAnchor) ([]model.EntrySummaryResponse, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query := *q
	if query.LastNShifts != nil {
		end := time.Now().UTC()
		if query.EndDate != nil {
			end = *query.EndDate
		}
		floor, err := s.logbooks.FindEarliestStartForLastNShifts(ctx, *query.LastNShifts, query.Logbooks, end)
		if err != nil {
			return nil, err
		}
		query.StartDate = &floor
	}

	entries, err := s.repo.SearchAll(ctx, &query)
	if err != nil {
		return nil, err
	}
	return s.toSummaries(ctx, entries)
}

func (s *entryService) GetReferences(ctx context.Context, id string) ([]model.EntrySummaryResponse, error) {
	cacheKey := fmt.Sprintf(cacheKeyReferrers, id)
	var cached []model.EntrySummaryResponse
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return cached, nil
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	referrers, err := s.repo.FindReferrers(ctx, id)
	if err != nil {
		return nil, err
	}
	summaries, err := s.toSummaries(ctx, referrers)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, summaries, cacheTTL); err != nil {
		logger.Debug("Failed to cache referrers for entry " + id)
	}
	return summaries, nil
}

func (s *entryService) GetFollowUps(ctx context.Context, id string) ([]model.EntrySummaryResponse, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	followUps, err := s.repo.FindAllByIDIn(ctx, entry.FollowUps)
	if err != nil {
		return nil, err
	}
	return s.toSummaries(ctx, followUps)
}

func (s *entryService) FindSummaryID(ctx context.Context, shiftID string, date time.Time) (string, error) {
	return s.repo.FindSummaryID(ctx, shiftID, time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC))
}

func (s *entryService) ExistsByOriginID(ctx context.Context, originID string) (bool, error) {
	return s.repo.ExistsByOriginID(ctx, originID)
}

// =====================================================
// SIDE EFFECTS
// =====================================================

// notifyBestEffort queues the entry-created email. Creation never fails on
// a broken queue.
func (s *entryService) notifyBestEffort(entry *model.Entry) {
	if len(entry.UserIDsToNotify) == 0 {
		return
	}

	payload, err := json.Marshal(shared.EntryNotificationPayload{
		EntryID:    entry.ID,
		Title:      entry.Title,
		LoggedBy:   entry.LoggedBy(),
		Recipients: entry.UserIDsToNotify,
	})
	if err != nil {
		logger.Error("Failed to marshal notification payload", err)
		return
	}
	task := asynq.NewTask(shared.TypeSendEntryNotification, payload)
	if _, err := s.asynq.Enqueue(task, asynq.Queue(shared.QueueEmail)); err != nil {
		logger.Error("Failed to enqueue entry notification", err)
	}
}

// invalidateEntries drops the cached views of every entry whose graph edges
// were touched by a mutation.
func (s *entryService) invalidateEntries(ctx context.Context, ids []string) {
	keys := make([]string, 0, len(ids)*2)
	for _, id := range ids {
		keys = append(keys,
			fmt.Sprintf(cacheKeyFull, id),
			fmt.Sprintf(cacheKeyReferrers, id),
		)
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.Error("Failed to invalidate entry cache", err)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrEntryNotFound)
}

func firstMissingID(wanted []string, resolved []*model.Entry) string {
	found := make(map[string]bool, len(resolved))
	for _, e := range resolved {
		found[e.ID] = true
	}
	for _, id := range wanted {
		if !found[id] {
			return id
		}
	}
	return ""
}
