package bptree

import "errors"

import pkgerrors "github.com/pkg/errors"


//============================================= Tree Errors


// Sentinel error kinds returned by the public Tree surface. Callers compare
// against these with errors.Is; wrapped causes (I/O failures, decode
// failures) stay attached underneath for diagnostics.
var (
	// ErrDuplicateKey is returned by Insert when the key already exists.
	ErrDuplicateKey = errors.New("bptree: duplicate key")
	// ErrNotFound is returned by Search, Remove, and Update for an absent key.
	ErrNotFound = errors.New("bptree: key not found")
	// ErrIoError is returned when the Pager fails to open, grow, map, or sync the backing file.
	ErrIoError = errors.New("bptree: io error")
	// ErrInvalidArgument is returned for the reserved empty key or an out-of-range key_index.
	ErrInvalidArgument = errors.New("bptree: invalid argument")
	// ErrCorrupted is an ErrIoError-class sentinel returned when a node or
	// meta block fails its checksum on read; it wraps ErrIoError (via
	// Unwrap) so errors.Is(err, ErrIoError) still matches a corrupted read,
	// per spec.md §7's "callers are expected to treat IoError as terminal".
	ErrCorrupted error = corruptedError{}
)

// corruptedError backs ErrCorrupted. It needs its own type (rather than a
// plain errors.New value) so it can Unwrap to ErrIoError while still
// comparing equal to itself through errors.Is.
type corruptedError struct{}

func (corruptedError) Error() string { return "bptree: corrupted block" }
func (corruptedError) Unwrap() error { return ErrIoError }

// treeError pairs a sentinel kind with an optional wrapped cause so
// errors.Is still matches the kind after the cause has been attached.
type treeError struct {
	kind  error
	cause error
}

func (e *treeError) Error() string {
	if e.cause == nil { return e.kind.Error() }
	return e.kind.Error() + ": " + e.cause.Error()
}

func (e *treeError) Unwrap() error { return e.kind }

// Cause implements the github.com/pkg/errors causer interface so
// pkgerrors.Cause walks through a treeError down to the underlying cause.
func (e *treeError) Cause() error { return e.cause }

// fail wraps cause (if any) with kind, attaching a pkg/errors stack trace to
// the cause so the I/O boundary where the failure actually happened survives
// into logs even though the caller only sees the sentinel kind.
func fail(kind error, cause error, msg string) error {
	if cause == nil { return kind }
	return &treeError{kind: kind, cause: pkgerrors.Wrap(cause, msg)}
}

func ioFail(cause error, msg string) error { return fail(ErrIoError, cause, msg) }
