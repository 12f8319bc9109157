// Package errors defines the detector's error taxonomy (§7) and maps it
// onto gRPC status codes for the external RPC boundary. The Kind/sentinel
// style is adapted from the teacher's errors package; the gRPC mapping is
// new, since the taxonomy itself is designed around codes.Code semantics.
package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// Kind classifies an error the way §7 requires callers to distinguish
// failures.
type Kind string

const (
	KindInvalidArgument  Kind = "invalid_argument"
	KindNotFound         Kind = "not_found"
	KindUnavailable      Kind = "unavailable"
	KindDeadlineExceeded Kind = "deadline_exceeded"
	KindInternal         Kind = "internal"
)

// Error wraps an inner error with a Kind, so callers can branch on
// classification without string-matching messages.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Invalid wraps err as KindInvalidArgument.
func Invalid(op string, err error) *Error { return New(KindInvalidArgument, op, err) }

// NotFound wraps err as KindNotFound.
func NotFound(op string, err error) *Error { return New(KindNotFound, op, err) }

// Unavailable wraps err as KindUnavailable.
func Unavailable(op string, err error) *Error { return New(KindUnavailable, op, err) }

// DeadlineExceeded wraps err as KindDeadlineExceeded.
func DeadlineExceeded(op string, err error) *Error { return New(KindDeadlineExceeded, op, err) }

// Internal wraps err as KindInternal.
func Internal(op string, err error) *Error { return New(KindInternal, op, err) }

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, defaulting to KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Code maps a Kind onto the equivalent gRPC status code, for the RPC
// boundary that sits outside this module (§1).
func Code(kind Kind) codes.Code {
	switch kind {
	case KindInvalidArgument:
		return codes.InvalidArgument
	case KindNotFound:
		return codes.NotFound
	case KindUnavailable:
		return codes.Unavailable
	case KindDeadlineExceeded:
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// Sentinel errors retained from the teacher's taxonomy for comparisons with
// errors.Is against plain, unwrapped causes.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternal      = errors.New("internal error")
)
