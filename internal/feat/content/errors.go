package content

import (
	"errors"
	"fmt"

	"github.com/foliohq/folio/pkg/fl/validation"
)

// Kind classifies a failed store operation. The admin UI renders only the
// message; the kind is preserved for logging and tests.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindNotFound
	KindValidation
	KindServerRejected
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not-found"
	case KindValidation:
		return "validation"
	case KindServerRejected:
		return "server-rejected"
	default:
		return "unknown"
	}
}

// StoreError is the typed failure surfaced by write paths of the remote
// gateway. Read paths never produce one; they are absorbed fail-soft.
type StoreError struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "create project"
	Message string // display-ready message
	Err     error
}

func (e *StoreError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError builds a StoreError wrapping an underlying cause.
func NewStoreError(kind Kind, op, message string, err error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf returns the classification for err. Local validation failures
// classify as KindValidation; anything unrecognized is KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return KindValidation
	}
	return KindUnknown
}

// DisplayMessage extracts a human-readable message for err, suitable for an
// error banner. The internal classification is never part of it.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *StoreError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}
