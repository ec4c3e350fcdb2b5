package zdb

import (
	"math/rand/v2"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"
)

func initBench(b *testing.B) {
	err := os.RemoveAll("testdata")
	require.NoError(b, err)
	err = os.MkdirAll("testdata", 0755)
	require.NoError(b, err)
}

func BenchmarkTree(b *testing.B) {
	const keySpace = 128 * 1024
	b.Run("Put", func(b *testing.B) {
		initBench(b)
		p, err := OpenPager(Config{Path: path.Join("testdata", "bench.put")})
		require.NoError(b, err)
		defer p.Close()
		tree, err := NewBPTree[uint64, [16]byte](p, 0)
		require.NoError(b, err)
		require.NoError(b, tree.Open())
		val := [16]byte{'h', 'e', 'l', 'l', 'o'}
		require.NoError(b, tree.BeginTx())
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			err = tree.Put(rand.Uint64N(keySpace), val, cmpU64)
			if err != nil {
				b.Fatal(err)
			}
		}
		b.StopTimer()
		require.NoError(b, tree.CommitTx())
	})
	b.Run("Get", func(b *testing.B) {
		initBench(b)
		p, err := OpenPager(Config{Path: path.Join("testdata", "bench.get")})
		require.NoError(b, err)
		defer p.Close()
		tree, err := NewBPTree[uint64, [16]byte](p, 0)
		require.NoError(b, err)
		require.NoError(b, tree.Open())
		val := [16]byte{'h', 'e', 'l', 'l', 'o'}
		require.NoError(b, tree.BeginTx())
		for i := uint64(0); i < keySpace; i++ {
			require.NoError(b, tree.Put(i, val, cmpU64))
		}
		require.NoError(b, tree.CommitTx())
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, found := tree.Get(rand.Uint64N(keySpace), cmpU64)
			if !found {
				b.Fatal("missing key")
			}
		}
	})
}
