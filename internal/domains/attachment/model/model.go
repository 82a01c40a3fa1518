package model

import (
	"errors"
	"fmt"
	"time"
)

// Preview lifecycle of an uploaded attachment. The original upload is
// immediately servable; the preview is produced by the worker afterwards.
const (
	PreviewWaiting      = "Waiting"
	PreviewProcessing   = "Processing"
	PreviewCompleted    = "Completed"
	PreviewError        = "Error"
	PreviewNotAvailable = "PreviewNotAvailable"
)

// Attachment is the metadata row of a stored blob. The bytes live in object
// storage under attachments/<id>/.
type Attachment struct {
	ID           string    `json:"id"`
	FileName     string    `json:"fileName"`
	ContentType  string    `json:"contentType"`
	PreviewState string    `json:"previewState"`
	CreatedAt    time.Time `json:"createdAt"`
}

// OriginalKey is the object-storage key of the uploaded file.
func (a *Attachment) OriginalKey() string {
	return fmt.Sprintf("attachments/%s/%s", a.ID, a.FileName)
}

// PreviewKey is the object-storage key of the generated preview.
func (a *Attachment) PreviewKey() string {
	return fmt.Sprintf("attachments/%s/preview.jpg", a.ID)
}

// Error codes
const (
	ErrCodeAttachmentNotFound = "ATC001"
	ErrCodeUploadFailed       = "ATC002"
	ErrCodePreviewNotReady    = "ATC003"
)

var (
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrUploadFailed       = errors.New("attachment upload failed")
	ErrPreviewNotReady    = errors.New("attachment preview not ready")
)

type AttachmentError struct {
	Code    string
	Message string
	Err     error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AttachmentError) Unwrap() error {
	return e.Err
}

func NewAttachmentNotFoundError(id string) *AttachmentError {
	return &AttachmentError{
		Code:    ErrCodeAttachmentNotFound,
		Message: fmt.Sprintf("the attachment with id '%s' doesn't exist", id),
		Err:     ErrAttachmentNotFound,
	}
}

func NewUploadFailedError(fileName string) *AttachmentError {
	return &AttachmentError{
		Code:    ErrCodeUploadFailed,
		Message: fmt.Sprintf("failed to store the attachment '%s'", fileName),
		Err:     ErrUploadFailed,
	}
}

func NewPreviewNotReadyError(id string) *AttachmentError {
	return &AttachmentError{
		Code:    ErrCodePreviewNotReady,
		Message: fmt.Sprintf("the preview of attachment '%s' is not ready", id),
		Err:     ErrPreviewNotReady,
	}
}
