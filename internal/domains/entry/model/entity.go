package model

import (
	"strings"
	"time"
)

// Entry is the central logbook record. Relational fields (SupersededBy,
// FollowUps, References) are entry-ID edges, never embedded documents.
//
// Lifecycle: inserted once with SupersededBy unset (Active), mutated only to
// set SupersededBy exactly once (Superseded, terminal), append to FollowUps,
// or rewrite Text/References when a referenced entry is superseded.
type Entry struct {
	ID       string  `json:"id"`
	OriginID *string `json:"originId,omitempty"`

	// Classification
	Logbooks []string `json:"logbooks"`
	Tags     []string `json:"tags"`

	// Content
	Title string `json:"title"`
	Text  string `json:"text"`
	Note  string `json:"note"`

	// Attribution, captured at creation and immutable afterwards.
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserName  string `json:"userName"`

	// Graph edges
	SupersededBy *string  `json:"supersededBy,omitempty"`
	FollowUps    []string `json:"followUps"`
	References   []string `json:"references"`

	Attachments []string    `json:"attachments"`
	Summarizes  *Summarizes `json:"summarizes,omitempty"`

	LoggedAt time.Time `json:"loggedAt"`
	EventAt  time.Time `json:"eventAt"`

	// Consumed once at creation for the best-effort email side effect.
	UserIDsToNotify []string `json:"userIdsToNotify,omitempty"`

	// Optimistic concurrency guard for the write-once supersede update.
	Version int `json:"-"`
}

// Summarizes marks an entry as the summary of a shift occurrence on a date.
type Summarizes struct {
	ShiftID string    `json:"shiftId"`
	Date    time.Time `json:"date"` // date component only
}

// IsSummary reports whether the entry is a shift summary.
func (e *Entry) IsSummary() bool {
	return e.Summarizes != nil
}

// LoggedBy is the display name of the author.
func (e *Entry) LoggedBy() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Creator is the authenticated identity an entry is attributed to.
type Creator struct {
	FirstName string
	LastName  string
	UserName  string
}
