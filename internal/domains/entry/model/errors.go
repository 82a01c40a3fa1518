package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeEntryNotFound     = "ENT001"
	ErrCodeValidation        = "ENT002"
	ErrCodeAlreadySuperseded = "ENT003"
	ErrCodeShiftNotFound     = "ENT004"
	ErrCodeDuplicateOrigin   = "ENT005"
	ErrCodeIndexCorruption   = "ENT006"
)

// Sentinel errors
var (
	ErrEntryNotFound     = errors.New("entry not found")
	ErrValidation        = errors.New("invalid entry input")
	ErrAlreadySuperseded = errors.New("entry already superseded")
	ErrShiftNotFound     = errors.New("shift not found")
	ErrDuplicateOrigin   = errors.New("origin id already imported")
	ErrIndexCorruption   = errors.New("reference index corrupted")
)

// EntryError carries a stable code next to the human message.
type EntryError struct {
	Code    string
	Message string
	Err     error
}

func (e *EntryError) Error() string {
	return e.Message
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewEntryNotFoundError(id string) *EntryError {
	return &EntryError{
		Code:    ErrCodeEntryNotFound,
		Message: fmt.Sprintf("entry '%s' has not been found", id),
		Err:     ErrEntryNotFound,
	}
}

func NewValidationError(message string) *EntryError {
	return &EntryError{
		Code:    ErrCodeValidation,
		Message: message,
		Err:     ErrValidation,
	}
}

func NewAlreadySupersededError(id string) *EntryError {
	return &EntryError{
		Code:    ErrCodeAlreadySuperseded,
		Message: fmt.Sprintf("entry '%s' is already superseded", id),
		Err:     ErrAlreadySuperseded,
	}
}

func NewShiftNotFoundError(shiftID string) *EntryError {
	return &EntryError{
		Code:    ErrCodeShiftNotFound,
		Message: fmt.Sprintf("shift '%s' has not been found on the logbook", shiftID),
		Err:     ErrShiftNotFound,
	}
}

func NewDuplicateOriginError(originID string) *EntryError {
	return &EntryError{
		Code:    ErrCodeDuplicateOrigin,
		Message: fmt.Sprintf("an entry with origin id '%s' already exists", originID),
		Err:     ErrDuplicateOrigin,
	}
}

// NewIndexCorruptionError flags a stored reference that no longer resolves.
// Unreachable if write-time filtering holds, so it maps to a server error.
func NewIndexCorruptionError(entryID, refID string) *EntryError {
	return &EntryError{
		Code:    ErrCodeIndexCorruption,
		Message: fmt.Sprintf("entry '%s' references '%s' which does not exist", entryID, refID),
		Err:     ErrIndexCorruption,
	}
}
