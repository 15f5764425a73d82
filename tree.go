package bptree

//============================================= Tree Façade


// Tree is the public handle to an open B+ tree index: one backing file, one
// mapping, one in-memory Meta snapshot. It composes the Pager, Node Codec,
// Meta Manager, Navigator, Mutator, and Scanner behind the operations
// spec.md's Tree Façade names (open, search, search_range, search_prefix,
// insert, remove, update, flush, close, get_meta).
//
// Grounded on the teacher's Mari struct (Mari.go), trimmed to a
// single-owner, non-concurrent handle: no RWMutex, no background resize or
// compaction goroutine, since concurrent writers and compaction are
// non-goals here (spec.md §1, §5).
type Tree struct {
	pager     *pager
	layout    layout
	meta      Meta
	blockPool *blockPool
}

// Open opens the file at path, creating and initializing it (one empty
// root leaf) if it is absent or opts.ForceEmpty is set. Order and ValueSize
// in opts only take effect on that initialization path; reopening an
// existing file honors the geometry already recorded in its Meta block,
// while opts.InitialSizeMB still sets the unit its length is rounded up to.
func Open(path string, opts Options) (*Tree, error) {
	opts = opts.withDefaults()

	pgr, isNew, err := openPager(path, opts.ForceEmpty, opts.InitialSizeMB)
	if err != nil { return nil, err }

	t := &Tree{pager: pgr}

	if isNew {
		t.layout = newLayout(opts.Order, opts.ValueSize)
		t.blockPool = newBlockPool(t.layout.blockSize)

		if err := t.initMeta(opts.Order, opts.ValueSize); err != nil {
			pgr.close()
			return nil, err
		}

		return t, nil
	}

	if err := t.loadMeta(); err != nil {
		pgr.close()
		return nil, err
	}

	t.layout = newLayout(t.meta.Order, t.meta.ValueSize)
	t.blockPool = newBlockPool(t.layout.blockSize)

	return t, nil
}

// Flush synchronously syncs the mapped region and backing file to disk.
// The caller must call this before Close if durability across the process
// exit is required (spec.md §5).
func (t *Tree) Flush() error { return t.pager.flush() }

// Close flushes, unmaps, and closes the backing file. Safe to call once;
// the Tree must not be used afterward.
func (t *Tree) Close() error { return t.pager.close() }

// GetMeta returns a read-only snapshot of the tree's current geometry and
// counters.
func (t *Tree) GetMeta() Meta { return t.meta }
