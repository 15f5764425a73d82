package bptree

//============================================= Scanner


// Search performs a point lookup, returning a copy of the value or
// ErrNotFound.
func (t *Tree) Search(key Key) ([]byte, error) {
	leaf, err := t.findLeaf(key)
	if err != nil { return nil, err }

	idx := leaf.findRecordIndex(key)
	if idx >= leaf.count || leaf.records[idx].Key.Compare(key) != 0 {
		return nil, ErrNotFound
	}

	value := make([]byte, len(leaf.records[idx].Value))
	copy(value, leaf.records[idx].Value)

	return value, nil
}

// SearchRange walks the leaf chain in ascending order emitting every record
// whose key lies in the half-open-on-the-left, closed-on-the-right interval
// (*left, right], starting at *left and stopping once max records have been
// written to out or right has been passed.
//
// On return, if hasMore is true, *left has been advanced to the key of the
// last record written to out, so calling SearchRange again with the same
// right/out/max resumes exactly where this call left off (scenario 5 in
// spec.md §8). If hasMore is false, *left is left unspecified past the scan.
func (t *Tree) SearchRange(left *Key, right Key, out []Record, max int) (int, bool, error) {
	if left == nil { return 0, false, fail(ErrInvalidArgument, nil, "left cursor must not be nil") }
	if max <= 0 || len(out) < max { return 0, false, fail(ErrInvalidArgument, nil, "out buffer smaller than max") }

	leaf, err := t.findLeaf(*left)
	if err != nil { return 0, false, err }

	idx := leaf.findRecordIndex(*left)
	if idx < leaf.count && leaf.records[idx].Key.Compare(*left) == 0 { idx++ }

	count := 0
	for {
		if idx >= leaf.count {
			if leaf.next == nullOffset { return count, false, nil }

			leaf, err = t.readNode(leaf.next)
			if err != nil { return 0, false, err }

			idx = 0
			continue
		}

		rec := leaf.records[idx]
		if rec.Key.Compare(right) > 0 { return count, false, nil }

		out[count] = copyRecord(rec)
		count++
		idx++

		if count == max {
			nextRec, found, peekErr := t.peekNext(leaf, idx)
			if peekErr != nil { return 0, false, peekErr }

			hasMore := found && nextRec.Key.Compare(right) <= 0
			if hasMore { *left = out[count-1].Key }

			return count, hasMore, nil
		}
	}
}

// SearchPrefix enumerates records in [*left, right] whose subfield at
// position keyIndex equals left's subfield at that position; the other
// subfields are not compared. It is an ordinary bounded walk over the leaf
// chain: the caller supplies the bounds (for example left with the other
// subfields at their minimum and right with them at their maximum), and
// records inside the bounds whose keyIndex subfield differs are skipped.
//
// Unlike SearchRange, both ends of the scanned interval are inclusive here:
// the caller-supplied left is itself expected to be a valid lower bound to
// include (it carries the prefix being searched for), not an exclusive
// resume cursor. On overflow, nextKey is set to the first unread key
// (spec.md §4.6) and hasMore is true; passing that value back in as left on
// the next call resumes correctly because of the inclusive-left semantics.
func (t *Tree) SearchPrefix(left *Key, right Key, keyIndex int, out []Record, max int, nextKey *Key) (int, bool, error) {
	if left == nil || nextKey == nil { return 0, false, fail(ErrInvalidArgument, nil, "left/nextKey must not be nil") }
	if max <= 0 || len(out) < max { return 0, false, fail(ErrInvalidArgument, nil, "out buffer smaller than max") }

	target, subErr := left.subfield(keyIndex)
	if subErr != nil { return 0, false, subErr }

	leaf, err := t.findLeaf(*left)
	if err != nil { return 0, false, err }

	idx := leaf.findRecordIndex(*left)

	count := 0
	for {
		if idx >= leaf.count {
			if leaf.next == nullOffset {
				*nextKey = emptyKey
				return count, false, nil
			}

			leaf, err = t.readNode(leaf.next)
			if err != nil { return 0, false, err }

			idx = 0
			continue
		}

		rec := leaf.records[idx]
		if rec.Key.Compare(right) > 0 {
			*nextKey = emptyKey
			return count, false, nil
		}

		idx++

		subval, _ := rec.Key.subfield(keyIndex)
		if subval != target { continue }

		out[count] = copyRecord(rec)
		count++

		if count == max {
			nextRec, found, peekErr := t.peekNextMatching(leaf, idx, right, keyIndex, target)
			if peekErr != nil { return 0, false, peekErr }

			if found {
				*nextKey = nextRec.Key
				*left = nextRec.Key
				return count, true, nil
			}

			*nextKey = emptyKey
			return count, false, nil
		}
	}
}

// peekNext returns the record immediately following (leaf, idx) in leaf-chain
// order, without advancing scan state, or found=false at end of chain.
func (t *Tree) peekNext(leaf *node, idx int) (Record, bool, error) {
	for {
		if idx < leaf.count { return leaf.records[idx], true, nil }
		if leaf.next == nullOffset { return Record{}, false, nil }

		var err error
		leaf, err = t.readNode(leaf.next)
		if err != nil { return Record{}, false, err }

		idx = 0
	}
}

// peekNextMatching scans forward from (leaf, idx) for the next record whose
// keyIndex subfield equals target and whose key does not exceed right,
// without mutating caller scan state.
func (t *Tree) peekNextMatching(leaf *node, idx int, right Key, keyIndex int, target uint32) (Record, bool, error) {
	for {
		if idx >= leaf.count {
			if leaf.next == nullOffset { return Record{}, false, nil }

			var err error
			leaf, err = t.readNode(leaf.next)
			if err != nil { return Record{}, false, err }

			idx = 0
			continue
		}

		rec := leaf.records[idx]
		if rec.Key.Compare(right) > 0 { return Record{}, false, nil }

		subval, _ := rec.Key.subfield(keyIndex)
		if subval == target { return rec, true, nil }

		idx++
	}
}

func copyRecord(r Record) Record {
	value := make([]byte, len(r.Value))
	copy(value, r.Value)

	return Record{Key: r.Key, Value: value}
}
