package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	logbookModel "elog-backend/internal/domains/logbook/model"
)

// =====================================================
// REQUEST DTOs
// =====================================================

// NewEntryRequest is the payload to create an entry, either standalone or as
// the new version/follow-up of an existing one.
type NewEntryRequest struct {
	Logbooks        []string    `json:"logbooks"`
	Tags            []string    `json:"tags"`
	Title           string      `json:"title"`
	Text            *string     `json:"text"`
	Note            string      `json:"note"`
	EventAt         *time.Time  `json:"eventAt"`
	Summarizes      *Summarizes `json:"summarizes"`
	Attachments     []string    `json:"attachments"`
	UserIDsToNotify []string    `json:"userIdsToNotify"`
	OriginID        *string     `json:"originId"`
}

func (r NewEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Logbooks, validation.Required.Error("at least one logbook is mandatory")),
		validation.Field(&r.Title, validation.Required.Error("the title is mandatory")),
		validation.Field(&r.Text, validation.NotNil.Error("the body is mandatory also if empty")),
	)
}

// QueryWithAnchor is the anchored search request. Limit counts entries
// strictly after the anchor (or from the top when no anchor); ContextSize
// counts entries at and before the anchor.
type QueryWithAnchor struct {
	AnchorID    string `form:"anchor" json:"anchor"`
	ContextSize int    `form:"contextSize" json:"contextSize"`
	Limit       *int   `form:"limit" json:"limit"`

	Logbooks       []string   `form:"logbooks" json:"logbooks"`
	Tags           []string   `form:"tags" json:"tags"`
	RequireAllTags bool       `form:"requireAllTags" json:"requireAllTags"`
	Authors        []string   `form:"authors" json:"authors"`
	OriginID       *string    `form:"originId" json:"originId"`
	Search         string     `form:"search" json:"search"`
	StartDate      *time.Time `form:"startDate" json:"startDate"`
	EndDate        *time.Time `form:"endDate" json:"endDate"`
	SortByLogDate  bool       `form:"sortByLogDate" json:"sortByLogDate"`
	HideSummaries  bool       `form:"hideSummaries" json:"hideSummaries"`
	LastNShifts    *int       `form:"lastNShifts" json:"lastNShifts"`
}

func (q QueryWithAnchor) Validate() error {
	if q.Limit == nil {
		return NewValidationError("the limit is mandatory")
	}
	if *q.Limit < 0 {
		return NewValidationError("the limit cannot be negative")
	}
	if q.ContextSize < 0 {
		return NewValidationError("the context size cannot be negative")
	}
	if q.ContextSize > 0 && q.AnchorID == "" {
		return NewValidationError("the context size cannot be used without an anchor id")
	}
	if q.LastNShifts != nil && *q.LastNShifts <= 0 {
		return NewValidationError("the number of shifts must be greater than zero")
	}
	return nil
}

// SortField resolves the timestamp column the window is ordered by.
func (q QueryWithAnchor) SortField() string {
	if q.SortByLogDate {
		return "logged_at"
	}
	return "event_at"
}

// ExpandOptions toggles the relational expansions of a full entry view.
type ExpandOptions struct {
	FollowUps    bool
	FollowingUp  bool
	History      bool
	References   bool
	ReferencedBy bool
	SupersededBy bool
}

// =====================================================
// RESPONSE DTOs
// =====================================================

// AttachmentView is the attachment decoration on entry views.
type AttachmentView struct {
	ID           string `json:"id"`
	FileName     string `json:"fileName"`
	ContentType  string `json:"contentType"`
	PreviewState string `json:"previewState"`
}

// EntrySummaryResponse is the compact view used by search results and
// relational expansions.
type EntrySummaryResponse struct {
	ID               string              `json:"id"`
	Logbooks         []string            `json:"logbooks"`
	Tags             []string            `json:"tags"`
	Title            string              `json:"title"`
	LoggedBy         string              `json:"loggedBy"`
	UserName         string              `json:"userName"`
	LoggedAt         time.Time           `json:"loggedAt"`
	EventAt          time.Time           `json:"eventAt"`
	IsEmpty          bool                `json:"isEmpty"`
	ReferencesInBody bool                `json:"referencesInBody"`
	FollowingUp      *string             `json:"followingUp,omitempty"`
	ReferencedBy     []string            `json:"referencedBy"`
	Shift            *logbookModel.Shift `json:"shift,omitempty"`
	Attachments      []AttachmentView    `json:"attachments"`
	Summarizes       *Summarizes         `json:"summarizes,omitempty"`
}

// EntryResponse is the full view with opt-in expansions. Omitted expansions
// stay empty collections, never null.
type EntryResponse struct {
	EntrySummaryResponse

	Text string `json:"text"`
	Note string `json:"note"`

	FollowUps           []EntrySummaryResponse `json:"followUps"`
	FollowingUpEntry    *EntrySummaryResponse  `json:"followingUpEntry,omitempty"`
	History             []EntrySummaryResponse `json:"history"`
	References          []EntrySummaryResponse `json:"references"`
	ReferencedByEntries []EntrySummaryResponse `json:"referencedByEntries"`
	SupersededBy        *EntrySummaryResponse  `json:"supersededBy,omitempty"`
}
