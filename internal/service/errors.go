package service

import (
	"errors"
	"fmt"
)

// Kind classifies service failures so transports can map them without
// inspecting messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalid
	KindUnauthorized
	KindNotFound
	KindAlreadyExists
	// KindInputOrder means reservations reached the engine out of start order.
	KindInputOrder
	// KindUpstream means the store, mail server or model could not be reached.
	KindUpstream
	// KindPartialWrite means a committed write was followed by failed side effects.
	KindPartialWrite
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindInputOrder:
		return "input_order"
	case KindUpstream:
		return "upstream_unavailable"
	case KindPartialWrite:
		return "partial_write"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrSlotTaken          = errors.New("room is already reserved in that slot")
	ErrMakeupNotFound     = errors.New("makeup booking not found")
	ErrAssistantDown      = errors.New("assistant not available at the moment")
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
	// Failed lists the recipients that were not notified (KindPartialWrite only)
	Failed []string
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E builds a typed error
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Invalid is shorthand for a validation failure with a formatted message
func Invalid(op, format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// FailedRecipients returns the unnotified recipients of a partial write
func FailedRecipients(err error) []string {
	var se *Error
	if errors.As(err, &se) {
		return se.Failed
	}
	return nil
}
