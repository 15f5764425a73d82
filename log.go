package bptree

import "log"

import "github.com/dustin/go-humanize"


//============================================= Ambient Logging


// logGrow reports a Pager file-growth event in human-readable form. Grow is
// the only Pager event worth logging unconditionally: it is rare, it blocks
// every other operation while it happens, and a silent multi-second remap
// is the kind of thing an operator needs surfaced without instrumenting
// every call site themselves.
func logGrow(path string, oldSize, newSize int64) {
	log.Printf("bptree: %s grew %s -> %s", path, humanize.Bytes(uint64(oldSize)), humanize.Bytes(uint64(newSize)))
}
