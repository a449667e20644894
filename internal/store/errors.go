package store

import (
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Kind classifies a store failure.
type Kind int

const (
	KindOther Kind = iota
	KindConstraint
	KindIO
	KindCorrupt
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindConstraint:
		return "constraint"
	case KindIO:
		return "io"
	case KindCorrupt:
		return "corrupt"
	case KindBusy:
		return "busy"
	default:
		return "other"
	}
}

var (
	// ErrClosed indicates the underlying database connection is unavailable.
	ErrClosed = errors.New("store: closed")

	// ErrInvalidInput is returned for rows that cannot be written (missing id or name).
	ErrInvalidInput = errors.New("store: invalid input")

	// ErrConstraint matches any *Error of KindConstraint via errors.Is.
	ErrConstraint = errors.New("store: constraint violation")

	// ErrIO matches any *Error of KindIO via errors.Is.
	ErrIO = errors.New("store: i/o failure")

	// ErrCorrupt matches any *Error of KindCorrupt via errors.Is.
	ErrCorrupt = errors.New("store: database corrupt")

	// ErrBusy matches any *Error of KindBusy via errors.Is.
	ErrBusy = errors.New("store: database busy")
)

// Error is returned for every failed SQL operation.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets callers match on the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConstraint:
		return e.Kind == KindConstraint
	case ErrIO:
		return e.Kind == KindIO
	case ErrCorrupt:
		return e.Kind == KindCorrupt
	case ErrBusy:
		return e.Kind == KindBusy
	}
	return false
}

// wrap converts a driver error into an *Error. Already wrapped errors and
// the package sentinels pass through unchanged.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *Error
	if errors.As(err, &storeErr) || errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrClosed) {
		return err
	}
	return &Error{Op: op, Kind: classify(err), Err: err}
}

func classify(err error) Kind {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return KindOther
	}

	// Extended result codes carry the primary code in the low byte.
	switch sqliteErr.Code() & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return KindConstraint
	case sqlite3.SQLITE_IOERR, sqlite3.SQLITE_FULL, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_READONLY:
		return KindIO
	case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB:
		return KindCorrupt
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return KindBusy
	default:
		return KindOther
	}
}
