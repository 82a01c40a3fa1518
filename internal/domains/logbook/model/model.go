package model

import (
	"errors"
	"fmt"
	"time"
)

// Logbook is the read model of a logbook: the core only needs existence,
// shift definitions and tag membership. Administration lives elsewhere.
type Logbook struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Shifts []Shift `json:"shifts"`
	Tags   []Tag   `json:"tags"`
}

// Shift is a named clock-time-of-day window of a logbook, used to bucket
// entries by the time-of-day of their event timestamp.
type Shift struct {
	ID        string `json:"id"`
	LogbookID string `json:"logbookId"`
	Name      string `json:"name"`
	From      string `json:"from"` // "HH:MM"
	To        string `json:"to"`   // "HH:MM", may wrap past midnight
}

// Tag belongs to exactly one logbook.
type Tag struct {
	ID        string `json:"id"`
	LogbookID string `json:"logbookId"`
	Name      string `json:"name"`
}

var (
	ErrLogbookNotFound = errors.New("logbook not found")
	ErrShiftNotFound   = errors.New("shift not found")
)

const clockLayout = "15:04"

// minuteOfDay parses an "HH:MM" clock string.
func minuteOfDay(clock string) (int, error) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Contains reports whether the time-of-day of t falls inside the shift
// window. Bounds are inclusive and windows may wrap past midnight.
func (s Shift) Contains(t time.Time) bool {
	from, err := minuteOfDay(s.From)
	if err != nil {
		return false
	}
	to, err := minuteOfDay(s.To)
	if err != nil {
		return false
	}

	minute := t.Hour()*60 + t.Minute()
	if from <= to {
		return minute >= from && minute <= to
	}
	// overnight window, e.g. 22:00-06:00
	return minute >= from || minute <= to
}

// StartOn returns the instant the shift starts on the given day, in the
// location of day.
func (s Shift) StartOn(day time.Time) (time.Time, error) {
	from, err := minuteOfDay(s.From)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, from/60, from%60, 0, 0, day.Location()), nil
}
