package bptree

import "encoding/binary"


//============================================= Composite Key


// keySize is the fixed wire size of a Key: four little-endian uint32 subfields.
const keySize = 16

// Key is the fixed-width composite key the tree is ordered by: an ordered
// tuple of four 32-bit subfields, compared lexicographically. The all-zero
// tuple is reserved as the rightmost-slot sentinel and must never be used as
// a user key.
type Key struct {
	K0, K1, K2, K3 uint32
}

// emptyKey is the reserved sentinel used for the rightmost index slot of
// every internal node and to drive the merge-repair lookup described in
// Navigator.
var emptyKey = Key{}

// IsEmpty reports whether every subfield is the sentinel zero value.
func (k Key) IsEmpty() bool {
	return k.K0 == 0 && k.K1 == 0 && k.K2 == 0 && k.K3 == 0
}

// Compare returns -1, 0, or 1 as k is less than, equal to, or greater than o,
// comparing subfields in order K0, K1, K2, K3.
func (k Key) Compare(o Key) int {
	switch {
		case k.K0 != o.K0:
			return cmpUint32(k.K0, o.K0)
		case k.K1 != o.K1:
			return cmpUint32(k.K1, o.K1)
		case k.K2 != o.K2:
			return cmpUint32(k.K2, o.K2)
		default:
			return cmpUint32(k.K3, o.K3)
	}
}

func cmpUint32(a, b uint32) int {
	switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
	}
}

// Less reports whether k sorts strictly before o.
func (k Key) Less(o Key) bool { return k.Compare(o) < 0 }

// subfield returns the subfield at position idx (0..3), used by SearchPrefix
// to project the composite key onto a single component.
func (k Key) subfield(idx int) (uint32, error) {
	switch idx {
		case 0:
			return k.K0, nil
		case 1:
			return k.K1, nil
		case 2:
			return k.K2, nil
		case 3:
			return k.K3, nil
		default:
			return 0, fail(ErrInvalidArgument, nil, "key_index out of range")
	}
}

// withSubfield returns a copy of k with the subfield at idx replaced by v.
func (k Key) withSubfield(idx int, v uint32) Key {
	switch idx {
		case 0:
			k.K0 = v
		case 1:
			k.K1 = v
		case 2:
			k.K2 = v
		default:
			k.K3 = v
	}

	return k
}

// encodeKey writes k's wire representation into buf, which must be at least keySize bytes.
func encodeKey(buf []byte, k Key) {
	binary.LittleEndian.PutUint32(buf[0:4], k.K0)
	binary.LittleEndian.PutUint32(buf[4:8], k.K1)
	binary.LittleEndian.PutUint32(buf[8:12], k.K2)
	binary.LittleEndian.PutUint32(buf[12:16], k.K3)
}

// decodeKey reads a Key from the first keySize bytes of buf.
func decodeKey(buf []byte) Key {
	return Key{
		K0: binary.LittleEndian.Uint32(buf[0:4]),
		K1: binary.LittleEndian.Uint32(buf[4:8]),
		K2: binary.LittleEndian.Uint32(buf[8:12]),
		K3: binary.LittleEndian.Uint32(buf[12:16]),
	}
}

// Record pairs a Key with its Value; Records are stored only in leaves and
// are what Scanner operations emit.
type Record struct {
	Key   Key
	Value []byte
}
