package bptree

import "os"
import "path/filepath"
import "testing"

import "github.com/stretchr/testify/require"


func tempTreePath(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "index.bpt")
	return path
}

func openTestTree(t *testing.T, order, valueSize int) *Tree {
	tr, err := Open(tempTreePath(t), Options{ForceEmpty: true, Order: order, ValueSize: valueSize})
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })

	return tr
}

func k(k0 uint32) Key { return Key{K0: k0} }

func v(s string, size int) []byte {
	buf := make([]byte, size)
	copy(buf, s)
	return buf
}

func TestOpenForceEmptyInitializesSingleLeafRoot(t *testing.T) {
	tr := openTestTree(t, 4, 8)

	meta := tr.GetMeta()
	require.Equal(t, int64(0), meta.NumKeys)
	require.Equal(t, 1, meta.Height)
	require.Equal(t, int64(1), meta.LeafNodeCount)
	require.Equal(t, int64(0), meta.InternalNodeCount)
	require.Equal(t, meta.RootOffset, meta.FirstLeafOffset)
}

func TestInsertAndSearchScenario1(t *testing.T) {
	tr := openTestTree(t, 64, 8)

	require.NoError(t, tr.Insert(k(1), v("A", 8)))
	require.NoError(t, tr.Insert(k(2), v("B", 8)))
	require.NoError(t, tr.Insert(k(3), v("C", 8)))

	val, err := tr.Search(k(2))
	require.NoError(t, err)
	require.Equal(t, v("B", 8), val)

	meta := tr.GetMeta()
	require.Equal(t, int64(3), meta.NumKeys)
	require.Equal(t, 1, meta.Height)
	require.Equal(t, int64(1), meta.LeafNodeCount)
}

func TestInsertDuplicateKeyFails(t *testing.T) {
	tr := openTestTree(t, 64, 8)

	require.NoError(t, tr.Insert(k(1), v("A", 8)))
	require.ErrorIs(t, tr.Insert(k(1), v("A2", 8)), ErrDuplicateKey)
}

func TestInsertEmptyKeyRejected(t *testing.T) {
	tr := openTestTree(t, 64, 8)
	require.ErrorIs(t, tr.Insert(emptyKey, v("A", 8)), ErrInvalidArgument)
}

func TestSearchMissingKeyNotFound(t *testing.T) {
	tr := openTestTree(t, 64, 8)
	require.NoError(t, tr.Insert(k(1), v("A", 8)))

	_, err := tr.Search(k(2))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOverwritesValueWithoutChangingShape(t *testing.T) {
	tr := openTestTree(t, 64, 8)
	require.NoError(t, tr.Insert(k(1), v("A", 8)))

	before := tr.GetMeta()
	require.NoError(t, tr.Update(k(1), v("Z", 8)))

	val, err := tr.Search(k(1))
	require.NoError(t, err)
	require.Equal(t, v("Z", 8), val)

	after := tr.GetMeta()
	require.Equal(t, before.NumKeys, after.NumKeys)
	require.Equal(t, before.LeafNodeCount, after.LeafNodeCount)
}

func TestUpdateMissingKeyNotFound(t *testing.T) {
	tr := openTestTree(t, 64, 8)
	require.ErrorIs(t, tr.Update(k(1), v("Z", 8)), ErrNotFound)
}

// leafChainKeys follows next from the first leaf, collecting every live key
// in order, the same traversal invariant 2 of spec.md §8 describes.
func leafChainKeys(t *testing.T, tr *Tree) []uint32 {
	t.Helper()

	offset := tr.GetMeta().FirstLeafOffset
	var out []uint32

	for offset != nullOffset {
		leaf, err := tr.readNode(offset)
		require.NoError(t, err)

		for _, rec := range leaf.records {
			out = append(out, rec.Key.K0)
		}

		offset = leaf.next
	}

	return out
}

func TestBulkInsertSplitsAndKeepsLeafChainOrdered(t *testing.T) {
	tr := openTestTree(t, 4, 8)

	for i := uint32(1); i <= 10; i++ {
		require.NoError(t, tr.Insert(k(i), v("x", 8)))
	}

	meta := tr.GetMeta()
	require.Greater(t, meta.LeafNodeCount, int64(1))
	require.Equal(t, 2, meta.Height)

	root, err := tr.readNode(meta.RootOffset)
	require.NoError(t, err)
	require.True(t, root.isInternal())

	require.Equal(t, []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, leafChainKeys(t, tr))
}

func TestRemoveTriggersMergesAndKeepsMinOccupancy(t *testing.T) {
	tr := openTestTree(t, 4, 8)

	for i := uint32(1); i <= 10; i++ {
		require.NoError(t, tr.Insert(k(i), v("x", 8)))
	}

	for _, key := range []uint32{5, 6, 7, 8} {
		require.NoError(t, tr.Remove(k(key)))
	}

	require.Equal(t, []uint32{1, 2, 3, 4, 9, 10}, leafChainKeys(t, tr))

	min := tr.minOccupancy()
	meta := tr.GetMeta()
	offset := meta.FirstLeafOffset
	for offset != nullOffset {
		leaf, err := tr.readNode(offset)
		require.NoError(t, err)
		if leaf.parent != nullOffset {
			require.GreaterOrEqual(t, leaf.count, min)
		}
		offset = leaf.next
	}
}

func TestInsertThenRemoveAllReturnsToEmptySingleLeafRoot(t *testing.T) {
	tr := openTestTree(t, 4, 8)

	for i := uint32(1); i <= 20; i++ {
		require.NoError(t, tr.Insert(k(i), v("x", 8)))
	}

	for i := uint32(1); i <= 20; i++ {
		require.NoError(t, tr.Remove(k(i)))
	}

	meta := tr.GetMeta()
	require.Equal(t, int64(0), meta.NumKeys)
	require.Equal(t, 1, meta.Height)
	require.Equal(t, meta.RootOffset, meta.FirstLeafOffset)

	root, err := tr.readNode(meta.RootOffset)
	require.NoError(t, err)
	require.True(t, root.isLeaf())
	require.Equal(t, 0, root.count)
}

func TestInsertThenRemoveSameKeyPreservesNumKeys(t *testing.T) {
	tr := openTestTree(t, 4, 8)

	for i := uint32(1); i <= 10; i++ {
		require.NoError(t, tr.Insert(k(i), v("x", 8)))
	}

	before := tr.GetMeta().NumKeys

	require.NoError(t, tr.Insert(k(100), v("x", 8)))
	require.NoError(t, tr.Remove(k(100)))

	require.Equal(t, before, tr.GetMeta().NumKeys)
}

func TestReopenAfterFlushPreservesData(t *testing.T) {
	path := tempTreePath(t)

	tr, err := Open(path, Options{ForceEmpty: true, Order: 4, ValueSize: 8})
	require.NoError(t, err)

	for i := uint32(1); i <= 10; i++ {
		require.NoError(t, tr.Insert(k(i), v("x", 8)))
	}

	require.NoError(t, tr.Flush())
	require.NoError(t, tr.Close())

	reopened, err := Open(path, Options{})
	require.NoError(t, err)
	defer reopened.Close()

	val, err := reopened.Search(k(5))
	require.NoError(t, err)
	require.Equal(t, v("x", 8), val)

	meta := reopened.GetMeta()
	require.Equal(t, int64(10), meta.NumKeys)
}

func TestOpenRejectsFileWithBadMagic(t *testing.T) {
	path := tempTreePath(t)
	require.NoError(t, os.WriteFile(path, make([]byte, 4*1024*1024), 0600))

	_, err := Open(path, Options{})
	require.ErrorIs(t, err, ErrInvalidArgument)
}
