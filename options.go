package bptree

//============================================= Tree Options


const (
	// DefaultOrder is the fan-out used when Options.Order is left at zero.
	DefaultOrder = 64
	// DefaultValueSize is the fixed value width used when Options.ValueSize is left at zero.
	DefaultValueSize = 32
	// DefaultInitialSizeMB is DB_SIZE: the initial/growth-step file size in megabytes.
	DefaultInitialSizeMB = 4
)

// Options configures Open. Order and ValueSize only take effect when a fresh
// file is created (or ForceEmpty is set); reopening an existing file always
// honors the geometry recorded in its Meta block. InitialSizeMB sizes a fresh
// file and, on reopen, is the unit the existing file's length is rounded up
// to a power-of-two multiple of.
//
// The C++ original fixes BP_ORDER and the key/value widths as compile-time
// template parameters; Go has no equivalent, so the same fixed-at-creation
// contract is expressed as runtime Options recorded into the Meta block
// (see SPEC_FULL.md, Options).
type Options struct {
	// ForceEmpty truncates and reinitializes the file even if it already exists.
	ForceEmpty bool
	// Order is the B+ tree fan-out. Zero selects DefaultOrder.
	Order int
	// ValueSize is the fixed value width in bytes. Zero selects DefaultValueSize.
	ValueSize int
	// InitialSizeMB is the initial/growth-step file size in megabytes. Zero selects DefaultInitialSizeMB.
	InitialSizeMB int
}

func (o Options) withDefaults() Options {
	if o.Order <= 0 { o.Order = DefaultOrder }
	if o.ValueSize <= 0 { o.ValueSize = DefaultValueSize }
	if o.InitialSizeMB <= 0 { o.InitialSizeMB = DefaultInitialSizeMB }

	return o
}
