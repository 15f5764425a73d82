package bptree

//============================================= Node I/O


// readNode reads and decodes the node at offset. Every call re-resolves the
// offset through the Pager rather than caching a pointer, since a prior
// grow() may have moved the mapping's base address (spec.md §9).
func (t *Tree) readNode(offset int64) (*node, error) {
	buf, err := t.pager.read(offset, t.layout.blockSize)
	if err != nil { return nil, err }

	return decodeNode(buf, t.layout, offset)
}

// writeNode serializes n and commits it through the Pager at its own
// offset. Callers must call this for every node they mutate before the
// owning public operation returns (spec.md §4.5, "Supporting operations").
func (t *Tree) writeNode(n *node) error {
	buf := t.blockPool.get()
	defer t.blockPool.put(buf)

	n.encode(t.layout, buf)
	return t.pager.write(n.offset, buf)
}

// allocNode bumps the meta next-free offset and returns a fresh node of the
// given kind at that offset. The node is not yet written to disk; the
// caller must writeNode it. Retired nodes are never reused (spec.md §3,
// invariant 7): the file grows monotonically with allocation count, not
// live node count.
func (t *Tree) allocNode(kind nodeKind) *node {
	offset := t.meta.NextFreeOffset
	t.meta.NextFreeOffset += int64(t.layout.blockSize)

	if kind == kindLeaf {
		t.meta.LeafNodeCount++
		return newLeafNode(offset)
	}

	t.meta.InternalNodeCount++
	return newInternalNode(offset)
}

// freeNode logically retires a node: it is unlinked from its chain by the
// caller and its slot count is dropped from the live totals. Its bytes
// remain in the file (spec.md §3, "Lifecycle").
func (t *Tree) freeNode(n *node) {
	if n.kind == kindLeaf {
		t.meta.LeafNodeCount--
		return
	}

	t.meta.InternalNodeCount--
}

// reparentChildren rewrites the parent field of every child referenced by
// slots, persisting each rewritten child. Needed after any slot movement
// across nodes (split, merge, borrow) per spec.md's
// reset_index_children_parent.
func (t *Tree) reparentChildren(slots []indexSlot, parent int64) error {
	for _, slot := range slots {
		child, err := t.readNode(slot.child)
		if err != nil { return err }

		if child.parent == parent { continue }

		child.parent = parent
		if err := t.writeNode(child); err != nil { return err }
	}

	return nil
}
