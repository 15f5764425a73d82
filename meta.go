package bptree

import "encoding/binary"

import "github.com/cespare/xxhash/v2"


//============================================= Meta Manager


// metaMagic identifies a file as a bptree index; metaFormatVersion guards
// against an incompatible on-disk layout. Neither exists in the original
// bpt.h (see SPEC_FULL.md) — both are a Go-native hardening so Open on an
// unrelated file fails with ErrInvalidArgument instead of decoding garbage.
const (
	metaMagic         uint64 = 0xB9710EE42DB7F001
	metaFormatVersion uint32 = 1
)

// Fixed meta block layout. KeySize is recorded but not independently
// configurable: it is always keySize (16).
const (
	metaMagicIdx           = 0
	metaFormatVersionIdx   = 8
	metaOrderIdx           = 12
	metaValueSizeIdx       = 16
	metaKeySizeIdx         = 20
	metaNumKeysIdx         = 24
	metaInternalCountIdx   = 32
	metaLeafCountIdx       = 40
	metaHeightIdx          = 48
	metaNextFreeOffsetIdx  = 56
	metaRootOffsetIdx      = 64
	metaFirstLeafOffsetIdx = 72
	metaChecksumIdx        = 80
	metaSerializedSize     = 88
	// metaBlockSize reserves headroom beyond the serialized fields so a
	// future revision can grow the meta block without relayouting the node
	// heap that begins right after it (see spec.md §9, free-list note).
	metaBlockSize = 128
)

// Meta is a read-only snapshot of the tree's geometry and counters, as
// returned by Tree.GetMeta. It mirrors the C++ original's meta_t
// (spec.md §3) with KeySize/ValueSize/Order promoted from compile-time
// template parameters to recorded, reopened-and-honored fields.
type Meta struct {
	Order             int
	ValueSize         int
	KeySize           int
	NumKeys           int64
	InternalNodeCount int64
	LeafNodeCount     int64
	Height            int
	NextFreeOffset    int64
	RootOffset        int64
	FirstLeafOffset   int64
}

func serializeMeta(m Meta) []byte {
	buf := make([]byte, metaBlockSize)

	binary.LittleEndian.PutUint64(buf[metaMagicIdx:], metaMagic)
	binary.LittleEndian.PutUint32(buf[metaFormatVersionIdx:], metaFormatVersion)
	binary.LittleEndian.PutUint32(buf[metaOrderIdx:], uint32(m.Order))
	binary.LittleEndian.PutUint32(buf[metaValueSizeIdx:], uint32(m.ValueSize))
	binary.LittleEndian.PutUint32(buf[metaKeySizeIdx:], uint32(m.KeySize))
	binary.LittleEndian.PutUint64(buf[metaNumKeysIdx:], uint64(m.NumKeys))
	binary.LittleEndian.PutUint64(buf[metaInternalCountIdx:], uint64(m.InternalNodeCount))
	binary.LittleEndian.PutUint64(buf[metaLeafCountIdx:], uint64(m.LeafNodeCount))
	binary.LittleEndian.PutUint32(buf[metaHeightIdx:], uint32(m.Height))
	binary.LittleEndian.PutUint64(buf[metaNextFreeOffsetIdx:], uint64(m.NextFreeOffset))
	binary.LittleEndian.PutUint64(buf[metaRootOffsetIdx:], uint64(m.RootOffset))
	binary.LittleEndian.PutUint64(buf[metaFirstLeafOffsetIdx:], uint64(m.FirstLeafOffset))

	checksum := xxhash.Sum64(buf[:metaChecksumIdx])
	binary.LittleEndian.PutUint64(buf[metaChecksumIdx:], checksum)

	return buf
}

func deserializeMeta(buf []byte) (Meta, error) {
	if len(buf) < metaSerializedSize { return Meta{}, fail(ErrInvalidArgument, nil, "meta block truncated") }

	if binary.LittleEndian.Uint64(buf[metaMagicIdx:]) != metaMagic {
		return Meta{}, fail(ErrInvalidArgument, nil, "not a bptree file")
	}

	if binary.LittleEndian.Uint32(buf[metaFormatVersionIdx:]) != metaFormatVersion {
		return Meta{}, fail(ErrInvalidArgument, nil, "unsupported bptree format version")
	}

	wantChecksum := binary.LittleEndian.Uint64(buf[metaChecksumIdx:])
	if xxhash.Sum64(buf[:metaChecksumIdx]) != wantChecksum {
		return Meta{}, fail(ErrCorrupted, nil, "meta checksum mismatch")
	}

	return Meta{
		Order:             int(binary.LittleEndian.Uint32(buf[metaOrderIdx:])),
		ValueSize:         int(binary.LittleEndian.Uint32(buf[metaValueSizeIdx:])),
		KeySize:           int(binary.LittleEndian.Uint32(buf[metaKeySizeIdx:])),
		NumKeys:           int64(binary.LittleEndian.Uint64(buf[metaNumKeysIdx:])),
		InternalNodeCount: int64(binary.LittleEndian.Uint64(buf[metaInternalCountIdx:])),
		LeafNodeCount:     int64(binary.LittleEndian.Uint64(buf[metaLeafCountIdx:])),
		Height:            int(binary.LittleEndian.Uint32(buf[metaHeightIdx:])),
		NextFreeOffset:    int64(binary.LittleEndian.Uint64(buf[metaNextFreeOffsetIdx:])),
		RootOffset:        int64(binary.LittleEndian.Uint64(buf[metaRootOffsetIdx:])),
		FirstLeafOffset:   int64(binary.LittleEndian.Uint64(buf[metaFirstLeafOffsetIdx:])),
	}, nil
}

// loadMeta reads and decodes the meta block from offset 0.
func (t *Tree) loadMeta() error {
	buf, err := t.pager.read(0, metaBlockSize)
	if err != nil { return err }

	meta, decErr := deserializeMeta(buf)
	if decErr != nil { return decErr }

	t.meta = meta
	return nil
}

// persistMeta writes the in-memory Meta back to offset 0. Every mutating
// public call must do this before returning (spec.md §4.3/§5).
func (t *Tree) persistMeta() error {
	buf := serializeMeta(t.meta)
	return t.pager.write(0, buf)
}

// initMeta initializes a brand-new file: one empty root leaf, first leaf ==
// root, height 1, key and internal-node counts zeroed, leaf count 1.
func (t *Tree) initMeta(order, valueSize int) error {
	t.meta = Meta{
		Order:           order,
		ValueSize:       valueSize,
		KeySize:         keySize,
		Height:          1,
		NextFreeOffset:  metaBlockSize + int64(t.layout.blockSize),
		RootOffset:      metaBlockSize,
		FirstLeafOffset: metaBlockSize,
	}
	t.meta.LeafNodeCount = 1

	root := newLeafNode(metaBlockSize)
	if err := t.writeNode(root); err != nil { return err }

	return t.persistMeta()
}
