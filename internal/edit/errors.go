package edit

import (
	"errors"
	"fmt"
)

// Error represents a failure detected while executing or undoing an edit
// command.
//
// Reconstruction and attachment failures are hard errors: they propagate
// out of Execute/Undo and the history manager refuses the transition.
// Missing replay targets are the exception - the desired end state may
// already hold, so commands log and no-op instead of returning
// CodeTargetNotFound.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// PlacementID identifies the affected timeline item, when known.
	PlacementID string

	// MediaID identifies the affected source, when known.
	MediaID string

	// Err is the underlying cause, if any.
	Err error
}

// Code categorizes edit errors.
type Code string

const (
	// CodeSourceNotReady indicates the referenced media exists but has not
	// finished decoding. Recoverable by retrying later; never auto-retried.
	CodeSourceNotReady Code = "SOURCE_NOT_READY"

	// CodeSourceMissing indicates the referenced media no longer exists.
	CodeSourceMissing Code = "SOURCE_MISSING"

	// CodeInvalidTimeRange indicates a computed or supplied span failed
	// validation. The mutation is rejected before any state change.
	CodeInvalidTimeRange Code = "INVALID_TIME_RANGE"

	// CodeTargetNotFound indicates the item or track a command expected is
	// absent at replay time.
	CodeTargetNotFound Code = "TARGET_NOT_FOUND"

	// CodeAttachmentFailed indicates the compositor refused to attach or
	// detach a node.
	CodeAttachmentFailed Code = "ATTACHMENT_FAILED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.PlacementID != "" && e.MediaID != "":
		return fmt.Sprintf("%s: %s (placement=%s, media=%s)", e.Code, e.Message, e.PlacementID, e.MediaID)
	case e.PlacementID != "":
		return fmt.Sprintf("%s: %s (placement=%s)", e.Code, e.Message, e.PlacementID)
	case e.MediaID != "":
		return fmt.Sprintf("%s: %s (media=%s)", e.Code, e.Message, e.MediaID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// CodeOf returns the edit error code carried by err, or "" if err is not
// an edit error. Uses errors.As to handle wrapped errors.
func CodeOf(err error) Code {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsSourceNotReady reports whether err is a not-yet-decoded source error.
func IsSourceNotReady(err error) bool { return CodeOf(err) == CodeSourceNotReady }

// IsSourceMissing reports whether err is a deleted-source error.
func IsSourceMissing(err error) bool { return CodeOf(err) == CodeSourceMissing }

// IsInvalidTimeRange reports whether err is a span validation error.
func IsInvalidTimeRange(err error) bool { return CodeOf(err) == CodeInvalidTimeRange }

// IsAttachmentFailed reports whether err is a compositor attach/detach error.
func IsAttachmentFailed(err error) bool { return CodeOf(err) == CodeAttachmentFailed }

// NewSourceNotReady creates an Error for a source still decoding.
func NewSourceNotReady(mediaID string) *Error {
	return &Error{
		Code:    CodeSourceNotReady,
		Message: "source media has not finished decoding",
		MediaID: mediaID,
	}
}

// NewSourceMissing creates an Error for a source that no longer resolves.
func NewSourceMissing(mediaID string) *Error {
	return &Error{
		Code:    CodeSourceMissing,
		Message: "source media no longer exists",
		MediaID: mediaID,
	}
}

// NewInvalidTimeRange creates an Error for a rejected span.
func NewInvalidTimeRange(placementID string, detail string) *Error {
	return &Error{
		Code:        CodeInvalidTimeRange,
		Message:     detail,
		PlacementID: placementID,
	}
}

// NewAttachmentFailed wraps a compositor attach/detach refusal.
func NewAttachmentFailed(placementID string, err error) *Error {
	return &Error{
		Code:        CodeAttachmentFailed,
		Message:     "compositor refused attach/detach",
		PlacementID: placementID,
		Err:         err,
	}
}
