package bptree

import "encoding/binary"

import "github.com/cespare/xxhash/v2"


//============================================= Node Codec


// nodeKind discriminates an internal node from a leaf; it is the first byte
// of every node block, matching spec.md's "(0 = internal, 1 = leaf)".
type nodeKind uint8

const (
	kindInternal nodeKind = 0
	kindLeaf     nodeKind = 1
)

// nullOffset marks the absence of a parent/sibling/child reference. Offset
// 0 is reserved for the meta block and is never a valid node offset, but we
// still use a distinct sentinel so "unset" is never confusable with a
// theoretical zero-based node heap.
const nullOffset int64 = -1

// Fixed header layout shared by internal and leaf blocks:
//   kind(1) parent(8) next(8) prev(8) count(4) checksum(8)
const (
	hdrKindIdx     = 0
	hdrParentIdx   = 1
	hdrNextIdx     = 9
	hdrPrevIdx     = 17
	hdrCountIdx    = 25
	hdrChecksumIdx = 29
	nodeHeaderSize = 37
)

const indexSlotSize = keySize + 8 // key + child offset

// layout captures the geometry fixed at tree creation: fan-out and value
// width. The C++ original fixes these as template parameters (BP_ORDER,
// value_t); Go has no equivalent, so they are computed once from Meta at
// Open and threaded through every node codec call instead.
type layout struct {
	order      int
	valueSize  int
	recordSize int // keySize + valueSize
	slotSize   int // max(recordSize, indexSlotSize)
	blockSize  int // nodeHeaderSize + order*slotSize
}

func newLayout(order, valueSize int) layout {
	recordSize := keySize + valueSize
	slotSize := recordSize
	if indexSlotSize > slotSize { slotSize = indexSlotSize }

	return layout{
		order:      order,
		valueSize:  valueSize,
		recordSize: recordSize,
		slotSize:   slotSize,
		blockSize:  nodeHeaderSize + order*slotSize,
	}
}

// indexSlot is an internal node's (separator key, child offset) pair. The
// rightmost slot of a node carries emptyKey and "covers everything >= the
// prior separator" per spec.md's invariant 5.
type indexSlot struct {
	key   Key
	child int64
}

// node is the decoded in-memory form of one on-disk block. Only the first
// count slots/records are live; capacity beyond that is zero-padded on disk.
type node struct {
	offset  int64
	kind    nodeKind
	parent  int64
	next    int64
	prev    int64
	count   int
	slots   []indexSlot // internal nodes
	records []Record    // leaf nodes
}

func newInternalNode(offset int64) *node {
	return &node{offset: offset, kind: kindInternal, parent: nullOffset, next: nullOffset, prev: nullOffset}
}

func newLeafNode(offset int64) *node {
	return &node{offset: offset, kind: kindLeaf, parent: nullOffset, next: nullOffset, prev: nullOffset}
}

// encode serializes n into a freshly zeroed block-sized buffer, so capacity
// beyond count is deterministically zero per spec.md's padding requirement.
func (n *node) encode(l layout, buf []byte) {
	for i := range buf { buf[i] = 0 }

	buf[hdrKindIdx] = byte(n.kind)
	binary.LittleEndian.PutUint64(buf[hdrParentIdx:], uint64(n.parent))
	binary.LittleEndian.PutUint64(buf[hdrNextIdx:], uint64(n.next))
	binary.LittleEndian.PutUint64(buf[hdrPrevIdx:], uint64(n.prev))
	binary.LittleEndian.PutUint32(buf[hdrCountIdx:], uint32(n.count))

	body := buf[nodeHeaderSize:]
	switch n.kind {
		case kindLeaf:
			for i := 0; i < n.count; i++ {
				slot := body[i*l.recordSize : (i+1)*l.recordSize]
				encodeKey(slot, n.records[i].Key)
				copy(slot[keySize:], n.records[i].Value)
			}
		default:
			for i := 0; i < n.count; i++ {
				slot := body[i*l.slotSize : i*l.slotSize+indexSlotSize]
				encodeKey(slot, n.slots[i].key)
				binary.LittleEndian.PutUint64(slot[keySize:], uint64(n.slots[i].child))
			}
	}

	checksum := checksumBlock(buf)
	binary.LittleEndian.PutUint64(buf[hdrChecksumIdx:], checksum)
}

// decodeNode parses a block read from offset. It verifies the embedded
// checksum and returns ErrCorrupted if the bytes were not written by encode
// (or were damaged since).
func decodeNode(buf []byte, l layout, offset int64) (*node, error) {
	if len(buf) != l.blockSize { return nil, fail(ErrCorrupted, nil, "short node block") }

	wantChecksum := binary.LittleEndian.Uint64(buf[hdrChecksumIdx:])
	if checksumBlock(buf) != wantChecksum { return nil, fail(ErrCorrupted, nil, "node checksum mismatch") }

	n := &node{
		offset: offset,
		kind:   nodeKind(buf[hdrKindIdx]),
		parent: int64(binary.LittleEndian.Uint64(buf[hdrParentIdx:])),
		next:   int64(binary.LittleEndian.Uint64(buf[hdrNextIdx:])),
		prev:   int64(binary.LittleEndian.Uint64(buf[hdrPrevIdx:])),
		count:  int(binary.LittleEndian.Uint32(buf[hdrCountIdx:])),
	}

	body := buf[nodeHeaderSize:]
	switch n.kind {
		case kindLeaf:
			n.records = make([]Record, n.count)
			for i := 0; i < n.count; i++ {
				slot := body[i*l.recordSize : (i+1)*l.recordSize]
				value := make([]byte, l.valueSize)
				copy(value, slot[keySize:])
				n.records[i] = Record{Key: decodeKey(slot), Value: value}
			}
		default:
			n.slots = make([]indexSlot, n.count)
			for i := 0; i < n.count; i++ {
				slot := body[i*l.slotSize : i*l.slotSize+indexSlotSize]
				n.slots[i] = indexSlot{key: decodeKey(slot), child: int64(binary.LittleEndian.Uint64(slot[keySize:]))}
			}
	}

	return n, nil
}

// checksumBlock hashes buf with the checksum field itself treated as zero,
// so encode and decode agree on what was hashed.
func checksumBlock(buf []byte) uint64 {
	digest := xxhash.New()
	digest.Write(buf[:hdrChecksumIdx])
	var zero [8]byte
	digest.Write(zero[:])
	digest.Write(buf[hdrChecksumIdx+8:])

	return digest.Sum64()
}

// isLeaf/isInternal are small readability helpers used throughout the Mutator/Navigator.
func (n *node) isLeaf() bool     { return n.kind == kindLeaf }
func (n *node) isInternal() bool { return n.kind == kindInternal }
