package bptree

import "testing"

import "github.com/stretchr/testify/require"


func TestSearchRangeResumesAcrossCalls(t *testing.T) {
	tr := openTestTree(t, 64, 8)

	for i := uint32(1); i <= 10; i++ {
		require.NoError(t, tr.Insert(k(i), v("x", 8)))
	}

	left := k(2)
	out := make([]Record, 3)

	count, hasMore, err := tr.SearchRange(&left, k(8), out, 3)
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.True(t, hasMore)
	require.Equal(t, []uint32{3, 4, 5}, keysOf(out[:count]))

	count, hasMore, err = tr.SearchRange(&left, k(8), out, 3)
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.False(t, hasMore)
	require.Equal(t, []uint32{6, 7, 8}, keysOf(out[:count]))
}

func TestSearchRangeAcrossFullBulkMatchesLawOfExhaustiveScan(t *testing.T) {
	tr := openTestTree(t, 4, 8)

	for i := uint32(1); i <= 30; i++ {
		require.NoError(t, tr.Insert(k(i), v("x", 8)))
	}

	left := Key{K3: 1} // below every real key (K0 >= 1) without being the reserved empty key
	out := make([]Record, 4)
	var got []uint32

	for {
		count, hasMore, err := tr.SearchRange(&left, k(30), out, 4)
		require.NoError(t, err)
		got = append(got, keysOf(out[:count])...)
		if !hasMore { break }
	}

	want := make([]uint32, 30)
	for i := range want { want[i] = uint32(i + 1) }
	require.Equal(t, want, got)
}

func TestSearchPrefixReturnsOnlyMatchingSubfield(t *testing.T) {
	tr := openTestTree(t, 64, 8)

	for i := uint32(1); i <= 20; i++ {
		key := Key{K0: i, K1: i % 5}
		require.NoError(t, tr.Insert(key, v("x", 8)))
	}

	left := Key{K0: 0, K1: 2}
	right := Key{K0: ^uint32(0), K1: 2, K2: ^uint32(0), K3: ^uint32(0)}

	var nextKey Key
	out := make([]Record, 10)

	count, hasMore, err := tr.SearchPrefix(&left, right, 1, out, 10, &nextKey)
	require.NoError(t, err)
	require.False(t, hasMore)
	require.Equal(t, 4, count)

	for _, rec := range out[:count] {
		require.Equal(t, uint32(2), rec.Key.K1)
	}
}

func TestSearchPrefixResumesOnOverflow(t *testing.T) {
	tr := openTestTree(t, 4, 8)

	for i := uint32(1); i <= 20; i++ {
		key := Key{K0: i, K1: i % 5}
		require.NoError(t, tr.Insert(key, v("x", 8)))
	}

	left := Key{K0: 0, K1: 2}
	right := Key{K0: ^uint32(0), K1: 2, K2: ^uint32(0), K3: ^uint32(0)}

	var nextKey Key
	out := make([]Record, 2)

	count, hasMore, err := tr.SearchPrefix(&left, right, 1, out, 2, &nextKey)
	require.NoError(t, err)
	require.True(t, hasMore)
	require.Equal(t, 2, count)

	count, hasMore, err = tr.SearchPrefix(&nextKey, right, 1, out, 2, &nextKey)
	require.NoError(t, err)
	require.False(t, hasMore)
	require.Equal(t, 2, count)
}

func keysOf(recs []Record) []uint32 {
	out := make([]uint32, len(recs))
	for i, r := range recs { out[i] = r.Key.K0 }

	return out
}
