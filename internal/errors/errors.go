// Package errors provides error handling for armory.
//
// It re-exports github.com/cockroachdb/errors and adds the error taxonomy the
// data layer reports:
//   - ErrNotFound: a lookup expected to yield exactly one record yielded none
//   - ErrAmbiguous: a lookup expected to yield exactly one record yielded several
//   - ErrMalformed: a document or generic call is missing or misnames a field
//   - ErrStore: the record store failed (I/O, constraint violation)
//
// Taxonomy errors are attached with Mark so the original message and stack
// survive while errors.Is still matches the sentinel:
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle not found
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is           = crdb.Is
	IsAny        = crdb.IsAny
	As           = crdb.As
	Mark         = crdb.Mark
	Unwrap       = crdb.Unwrap
	UnwrapAll    = crdb.UnwrapAll
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Sentinels for the data layer. Match with Is; attach with Mark.
var (
	// ErrNotFound indicates a single-record resolution matched nothing.
	ErrNotFound = New("not found")

	// ErrAmbiguous indicates a single-record resolution matched more than one record.
	ErrAmbiguous = New("ambiguous match")

	// ErrMalformed indicates invalid input: a configuration document missing a
	// required field, or an unknown entity kind or column in a generic call.
	ErrMalformed = New("malformed input")

	// ErrStore indicates a failure reported by the record store.
	ErrStore = New("store failure")
)

// NotFoundf returns a new error marked as ErrNotFound.
func NotFoundf(format string, args ...interface{}) error {
	return Mark(crdb.NewWithDepthf(1, format, args...), ErrNotFound)
}

// Ambiguousf returns a new error marked as ErrAmbiguous.
func Ambiguousf(format string, args ...interface{}) error {
	return Mark(crdb.NewWithDepthf(1, format, args...), ErrAmbiguous)
}

// Malformedf returns a new error marked as ErrMalformed.
func Malformedf(format string, args ...interface{}) error {
	return Mark(crdb.NewWithDepthf(1, format, args...), ErrMalformed)
}

// WrapMalformed wraps err with context and marks it as ErrMalformed.
func WrapMalformed(err error, context string) error {
	if err == nil {
		return nil
	}
	return Mark(crdb.WrapWithDepth(1, err, context), ErrMalformed)
}

// WrapStore wraps err with context and marks it as ErrStore.
// Errors that already carry a taxonomy mark keep it.
func WrapStore(err error, context string) error {
	if err == nil {
		return nil
	}
	wrapped := crdb.WrapWithDepth(1, err, context)
	if IsAny(err, ErrNotFound, ErrAmbiguous, ErrMalformed, ErrStore) {
		return wrapped
	}
	return Mark(wrapped, ErrStore)
}
