package services

import "errors"

// Validation failures raised by the messaging service before any store
// access. All are recoverable by the caller correcting input and retrying.
var (
	ErrEmptyBody          = errors.New("message body is required")
	ErrMissingRecipient   = errors.New("a recipient is required for a direct message")
	ErrMissingAudience    = errors.New("an audience is required for a broadcast")
	ErrInvalidAddressee   = errors.New("invalid message recipient")
	ErrInvalidAudience    = errors.New("invalid broadcast audience")
	ErrBroadcastForbidden = errors.New("only administrators can send broadcasts")
	ErrNoReplyTarget      = errors.New("message has no reply target")
	ErrNotThreadRoot      = errors.New("replies must target the first message of a thread")
)

// Lookup/visibility failures.
var (
	ErrMessageNotFound = errors.New("message not found")
	ErrNotVisible      = errors.New("message is not visible to this user")
)
