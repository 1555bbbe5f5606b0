package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

func New(msg string) error {
	return cr.New(msg)
}

func Newf(format string, args ...any) error {
	return cr.Newf(format, args...)
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

// Mark tags err so errors.Is(err, markErr) holds while the message and
// stack of err are kept. A nil err yields markErr itself.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(err, markErr)
}

// ExtractStackLines renders err with its stack and keeps the first
// maxLines non-blank lines for structured logs.
func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	var lines []string
	for line := range strings.SplitSeq(fmt.Sprintf("%+v", err), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if maxLines > 0 && len(lines) == maxLines {
			break
		}
	}
	return lines
}

// Kind classifies failures that are reported back to the caller with a
// human readable message. Anything without a kind is an internal failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindBadRequest
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(format string, args ...any) error {
	return newKind(KindNotFound, format, args...)
}

func BadRequest(format string, args ...any) error {
	return newKind(KindBadRequest, format, args...)
}

func Conflict(format string, args ...any) error {
	return newKind(KindConflict, format, args...)
}

func newKind(kind Kind, format string, args ...any) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return cr.WithStackDepth(&Error{Kind: kind, Message: msg}, 2)
}

// KindOf returns the kind and public message of the first classified error
// in the chain.
func KindOf(err error) (Kind, string) {
	var e *Error
	if cr.As(err, &e) {
		return e.Kind, e.Message
	}
	return KindUnknown, ""
}

func IsKind(err error, kind Kind) bool {
	k, _ := KindOf(err)
	return k == kind
}

func Is(err, target error) bool {
	return cr.Is(err, target)
}
