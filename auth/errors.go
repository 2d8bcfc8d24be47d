package auth

import (
	"errors"

	"gorm.io/gorm"
)

// Kind classifies why an auth operation failed.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindConflict
	KindStoreUnavailable
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindStoreUnavailable:
		return "store unavailable"
	case KindInvalid:
		return "invalid input"
	default:
		return "unknown"
	}
}

// Error carries the failure kind, the operation that failed and the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

var (
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrInvalid          = &Error{Kind: KindInvalid}
)

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// storeError maps a store failure onto the taxonomy.
func storeError(op string, err error) *Error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return newError(KindNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return newError(KindConflict, op, err)
	default:
		return newError(KindStoreUnavailable, op, err)
	}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// PublicMessage is the failure text shown to end users. Lookup, password and store
// failures all read the same; only a taken username is called out.
func PublicMessage(err error) string {
	if KindOf(err) == KindConflict {
		return "username already in use"
	}
	return "invalid credentials"
}
