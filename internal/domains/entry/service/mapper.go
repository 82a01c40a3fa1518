package service

import (
	"context"
	"strings"

	attachmentModel "elog-backend/internal/domains/attachment/model"
	"elog-backend/internal/domains/entry/model"
	"elog-backend/internal/domains/entry/reference"
)

// toSummary builds the decorated compact view of an entry: attachment
// metadata, the shift covering eventAt, the current parent thread and the
// ids of live referrers.
func (s *entryService) toSummary(ctx context.Context, entry *model.Entry) (*model.EntrySummaryResponse, error) {
	attachments, err := s.attachments.GetAll(ctx, entry.Attachments)
	if err != nil {
		return nil, err
	}

	summary := &model.EntrySummaryResponse{
		ID:               entry.ID,
		Logbooks:         entry.Logbooks,
		Tags:             entry.Tags,
		Title:            entry.Title,
		LoggedBy:         entry.LoggedBy(),
		UserName:         entry.UserName,
		LoggedAt:         entry.LoggedAt,
		EventAt:          entry.EventAt,
		IsEmpty:          strings.TrimSpace(entry.Text) == "",
		ReferencesInBody: reference.ContainsAny(entry.Text),
		ReferencedBy:     []string{},
		Attachments:      toAttachmentViews(attachments),
		Summarizes:       entry.Summarizes,
	}

	if len(entry.Logbooks) > 0 {
		shift, err := s.logbooks.FindShiftByTimeOfDay(ctx, entry.Logbooks[0], entry.EventAt)
		if err == nil && shift != nil {
			summary.Shift = shift
		}
	}

	parent, err := s.repo.FindFollowingUp(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	if parent != nil {
		summary.FollowingUp = &parent.ID
	}

	referrers, err := s.repo.FindReferrers(ctx, entry.ID)
	if err != nil {
		return nil, err
	}
	for _, referrer := range referrers {
		summary.ReferencedBy = append(summary.ReferencedBy, referrer.ID)
	}

	return summary, nil
}

func (s *entryService) toSummaries(ctx context.Context, entries []*model.Entry) ([]model.EntrySummaryResponse, error) {
	result := make([]model.EntrySummaryResponse, 0, len(entries))
	for _, entry := range entries {
		summary, err := s.toSummary(ctx, entry)
		if err != nil {
			return nil, err
		}
		result = append(result, *summary)
	}
	return result, nil
}

func toAttachmentViews(attachments []*attachmentModel.Attachment) []model.AttachmentView {
	views := make([]model.AttachmentView, 0, len(attachments))
	for _, a := range attachments {
		views = append(views, model.AttachmentView{
			ID:           a.ID,
			FileName:     a.FileName,
			ContentType:  a.ContentType,
			PreviewState: a.PreviewState,
		})
	}
	return views
}
