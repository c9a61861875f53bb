package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrMissingField    = errors.New("missing field")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrNotFound        = errors.New("entry not found")
)

// MalformedRecordError reports a block line that is not a "key: value" pair.
type MalformedRecordError struct {
	Block  int
	Line   int
	Text   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "missing ':' separator"
	}
	return fmt.Sprintf("malformed record in block %d, line %d: %s: %q", e.Block, e.Line, reason, e.Text)
}

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

// MissingFieldError reports a required field that is absent or empty.
// Block is 0 when the field is missing from a CSV header.
type MissingFieldError struct {
	Block int
	Field string
}

func (e *MissingFieldError) Error() string {
	if e.Block == 0 {
		return fmt.Sprintf("missing required field %q", e.Field)
	}
	return fmt.Sprintf("block %d: missing required field %q", e.Block, e.Field)
}

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

type DuplicateKeyError struct {
	Key    string
	First  int
	Second int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q in blocks %d and %d", e.Key, e.First, e.Second)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entry not found: %s", e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// IsLoadError reports whether err came from parsing, validating or indexing
// catalog content, as opposed to I/O or storage failures.
func IsLoadError(err error) bool {
	return errors.Is(err, ErrMalformedRecord) || errors.Is(err, ErrMissingField) || errors.Is(err, ErrDuplicateKey)
}
