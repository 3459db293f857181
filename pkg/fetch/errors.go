package fetch

import (
	"errors"
	"fmt"
)

var (
	ErrConnection    = errors.New("fetch: connection failed")
	ErrStatus        = errors.New("fetch: unexpected status")
	ErrDecode        = errors.New("fetch: failed to read response body")
	ErrNotFound      = errors.New("fetch: target not found")
	ErrInvalidTarget = errors.New("fetch: invalid target")

	ErrFailedToLoadConfig = errors.New("fetch: failed to load client config")
	ErrRedisNotReady      = errors.New("fetch: redis did not become ready within the given time period")
	ErrInvalidRedisURL    = errors.New("fetch: failed to parse redis connection string")
)

// Kind classifies why a fetch failed.
type Kind uint8

const (
	KindConnection Kind = iota + 1
	KindStatus
	KindDecode
	KindNotFound
	KindInvalidTarget
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	case KindNotFound:
		return "not_found"
	case KindInvalidTarget:
		return "invalid_target"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConnection:
		return ErrConnection
	case KindStatus:
		return ErrStatus
	case KindDecode:
		return ErrDecode
	case KindNotFound:
		return ErrNotFound
	case KindInvalidTarget:
		return ErrInvalidTarget
	default:
		return nil
	}
}

// Error describes a failed fetch. It matches the sentinel of its Kind with
// errors.Is and unwraps to the underlying cause.
type Error struct {
	Kind   Kind
	Target string
	Status int // upstream status code, if any
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("fetch %s: %s", e.Target, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind Kind, target string, err error) *Error {
	return &Error{Kind: kind, Target: target, Err: err}
}
