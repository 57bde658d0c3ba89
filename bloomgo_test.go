package bloomgo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/bloomgo/blobstore"
	"github.com/hupe1980/bloomgo/codec"
)

func TestFilterNoFalseNegatives(t *testing.T) {
	bf, err := New(1000, 0.01)
	require.NoError(t, err)
	defer bf.Close()

	for i := 0; i < 1000; i++ {
		require.NoError(t, bf.Add(fmt.Sprintf("key-%d", i)))
	}

	for i := 0; i < 1000; i++ {
		assert.True(t, bf.Contains(fmt.Sprintf("key-%d", i)), "key-%d", i)
	}
	assert.Equal(t, uint64(1000), bf.ElementsAdded())
}

func TestFilterFalsePositiveRate(t *testing.T) {
	bf, err := New(1000, 0.01)
	require.NoError(t, err)
	defer bf.Close()

	for i := 0; i < 1000; i++ {
		require.NoError(t, bf.Add(fmt.Sprintf("member-%d", i)))
	}

	falsePositives := 0
	const probes = 10000
	for i := 0; i < probes; i++ {
		if bf.Contains(fmt.Sprintf("absent-%d", i)) {
			falsePositives++
		}
	}

	// At full capacity the observed rate should sit near the 1% target.
	rate := float64(falsePositives) / probes
	assert.Less(t, rate, 0.02, "observed rate %f", rate)
}

func TestFilterCurrentFalsePositiveRate(t *testing.T) {
	bf, err := New(100, 0.01)
	require.NoError(t, err)
	defer bf.Close()

	assert.Zero(t, bf.CurrentFalsePositiveRate())

	for i := 0; i < 100; i++ {
		require.NoError(t, bf.Add(fmt.Sprintf("key-%d", i)))
	}

	// (1 - e^(-7*100/959))^7 for the derived m=959, k=7.
	assert.InDelta(t, 0.010015, bf.CurrentFalsePositiveRate(), 0.0001)
}

func TestFilterZeroHashRounds(t *testing.T) {
	// A loose enough target derives zero hash rounds (n=100, p=0.99 gives
	// m=3, k=0). The derivation never clamps, so the behavior is kept as-is:
	// Add touches no bits, the counter still counts calls, and a zero-round
	// lookup is vacuously true.
	bf, err := New(100, 0.99)
	require.NoError(t, err)
	defer bf.Close()

	require.Equal(t, uint64(3), bf.NumberBits())
	require.Zero(t, bf.NumberHashes())

	require.NoError(t, bf.Add("anything"))
	require.NoError(t, bf.Add("anything"))
	assert.Equal(t, uint64(2), bf.ElementsAdded())
	assert.Equal(t, []byte{0}, bf.snapshot().Bits)

	assert.True(t, bf.Contains("anything"))
	assert.True(t, bf.Contains("never-added"))
}

func TestFilterClear(t *testing.T) {
	bf, err := New(100, 0.01)
	require.NoError(t, err)
	defer bf.Close()

	require.NoError(t, bf.Add("one"))
	require.NoError(t, bf.Add("two"))
	require.True(t, bf.Contains("one"))

	require.NoError(t, bf.Clear())

	assert.Zero(t, bf.ElementsAdded())
	assert.False(t, bf.Contains("one"))
	assert.False(t, bf.Contains("two"))
	assert.Zero(t, bf.CurrentFalsePositiveRate())
}

func TestFilterInsufficientHashes(t *testing.T) {
	bf, err := New(100, 0.01)
	require.NoError(t, err)
	defer bf.Close()

	require.Equal(t, uint(7), bf.NumberHashes())

	hashes := DefaultHashFamily().DeriveHashes(3, "short")
	err = bf.AddHashes(hashes)
	require.ErrorIs(t, err, ErrInsufficientHashes)

	// A rejected insert must not touch any bit or the counter.
	assert.Zero(t, bf.ElementsAdded())
	snap := bf.snapshot()
	assert.Equal(t, make([]byte, len(snap.Bits)), snap.Bits)

	_, err = bf.ContainsHashes(hashes)
	require.ErrorIs(t, err, ErrInsufficientHashes)
}

func TestFilterPrecomputedHashes(t *testing.T) {
	bf, err := New(100, 0.01)
	require.NoError(t, err)
	defer bf.Close()

	hashes := DefaultHashFamily().DeriveHashes(bf.NumberHashes(), "shared-key")
	require.NoError(t, bf.AddHashes(hashes))

	hit, err := bf.ContainsHashes(hashes)
	require.NoError(t, err)
	assert.True(t, hit)

	// The hash-based and key-based paths agree.
	assert.True(t, bf.Contains("shared-key"))
}

func TestFilterConcurrentAdds(t *testing.T) {
	bf, err := New(10000, 0.01)
	require.NoError(t, err)
	defer bf.Close()

	const (
		workers       = 8
		keysPerWorker = 500
	)

	g := new(errgroup.Group)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < keysPerWorker; i++ {
				if err := bf.Add(fmt.Sprintf("w%d-key-%d", w, i)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, uint64(workers*keysPerWorker), bf.ElementsAdded())
	for w := 0; w < workers; w++ {
		for i := 0; i < keysPerWorker; i++ {
			require.True(t, bf.Contains(fmt.Sprintf("w%d-key-%d", w, i)))
		}
	}
}

func TestFilterExportImport(t *testing.T) {
	bf, err := New(100, 0.01)
	require.NoError(t, err)
	defer bf.Close()

	for i := 0; i < 50; i++ {
		require.NoError(t, bf.Add(fmt.Sprintf("key-%d", i)))
	}

	path := filepath.Join(t.TempDir(), "filter.blm")
	require.NoError(t, bf.Export(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(bf.ExportSize()), info.Size())

	restored, err := Import(path)
	require.NoError(t, err)
	defer restored.Close()

	assert.Equal(t, bf.EstimatedElements(), restored.EstimatedElements())
	assert.Equal(t, bf.FalsePositiveRate(), restored.FalsePositiveRate())
	assert.Equal(t, bf.NumberBits(), restored.NumberBits())
	assert.Equal(t, bf.NumberHashes(), restored.NumberHashes())
	assert.Equal(t, bf.ElementsAdded(), restored.ElementsAdded())
	for i := 0; i < 50; i++ {
		assert.True(t, restored.Contains(fmt.Sprintf("key-%d", i)))
	}
}

func TestFilterWriteTo(t *testing.T) {
	bf, err := New(100, 0.01)
	require.NoError(t, err)
	defer bf.Close()

	require.NoError(t, bf.Add("payload"))

	var buf bytes.Buffer
	n, err := bf.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(bf.ExportSize()), n)
	assert.Equal(t, int(bf.ExportSize()), buf.Len())

	snap, err := codec.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, uint64(100), snap.EstimatedElements)
	assert.Equal(t, uint64(1), snap.ElementsAdded)
}

func TestFilterHexRoundTrip(t *testing.T) {
	bf, err := New(100, 0.01)
	require.NoError(t, err)
	defer bf.Close()

	for i := 0; i < 25; i++ {
		require.NoError(t, bf.Add(fmt.Sprintf("hex-%d", i)))
	}

	str := bf.ExportHex()
	require.Len(t, str, int(bf.ExportSize())*2)

	restored, err := ImportHex(str)
	require.NoError(t, err)
	defer restored.Close()

	assert.Equal(t, bf.ElementsAdded(), restored.ElementsAdded())
	for i := 0; i < 25; i++ {
		assert.True(t, restored.Contains(fmt.Sprintf("hex-%d", i)))
	}

	_, err = ImportHex("not-hex")
	require.ErrorIs(t, err, ErrInvalidHexLength)
}

func TestImportHexErrorClassification(t *testing.T) {
	bf, err := New(10, 0.05)
	require.NoError(t, err)
	defer bf.Close()
	str := bf.ExportHex()

	// Odd length is a length failure.
	_, err = ImportHex(str[1:])
	require.ErrorIs(t, err, ErrInvalidHexLength)

	// A corrupt digit is not.
	_, err = ImportHex("zz" + str[2:])
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidHexLength)

	// Well-formed hex whose bit array does not match the sizing derived
	// from its trailer is a snapshot mismatch, not a length failure.
	_, err = ImportHex("00" + str)
	require.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.NotErrorIs(t, err, ErrInvalidHexLength)
}

func TestFilterOnDiskLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.blm")

	bf, err := NewOnDisk(1000, 0.01, path)
	require.NoError(t, err)
	require.True(t, bf.OnDisk())

	for i := 0; i < 100; i++ {
		require.NoError(t, bf.Add(fmt.Sprintf("disk-%d", i)))
	}
	require.NoError(t, bf.Sync())
	require.NoError(t, bf.Close())

	// Reopen the same backing file: bits and counter survive.
	reopened, err := ImportOnDisk(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.True(t, reopened.OnDisk())
	assert.Equal(t, uint64(100), reopened.ElementsAdded())
	for i := 0; i < 100; i++ {
		assert.True(t, reopened.Contains(fmt.Sprintf("disk-%d", i)))
	}
}

func TestFilterOnDiskCounterWriteThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.blm")

	bf, err := NewOnDisk(100, 0.05, path)
	require.NoError(t, err)
	defer bf.Close()

	require.NoError(t, bf.Add("a"))
	require.NoError(t, bf.Add("b"))
	require.NoError(t, bf.Add("c"))

	// The counter is written through on every insert, independent of Sync
	// or Close, so the raw file already carries it.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, added, _ := codec.DecodeTrailer(data[len(data)-codec.TrailerSize:])
	assert.Equal(t, uint64(3), added)

	require.NoError(t, bf.Clear())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	_, added, _ = codec.DecodeTrailer(data[len(data)-codec.TrailerSize:])
	assert.Zero(t, added)
}

func TestFilterOnDiskExportNoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "filter.blm")

	bf, err := NewOnDisk(100, 0.01, path)
	require.NoError(t, err)
	defer bf.Close()

	require.NoError(t, bf.Add("resident"))

	// Export to a different path succeeds without creating anything: the
	// backing file is the export.
	other := filepath.Join(dir, "elsewhere.blm")
	require.NoError(t, bf.Export(other))
	_, err = os.Stat(other)
	assert.True(t, os.IsNotExist(err))
}

func TestFilterOnDiskRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter.blm")

	// Shorter than a trailer.
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o600))
	_, err := ImportOnDisk(path)
	require.Error(t, err)

	// Valid trailer scalars but a bit array of the wrong length.
	bf, err := New(100, 0.01)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = bf.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, bf.Close())

	require.NoError(t, os.WriteFile(path, buf.Bytes()[1:], 0o600))
	_, err = ImportOnDisk(path)
	require.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestFilterStoreRoundTrip(t *testing.T) {
	compressions := []struct {
		name string
		c    codec.Compression
	}{
		{"none", codec.CompressionNone},
		{"zstd", codec.CompressionZstd},
		{"lz4", codec.CompressionLZ4},
	}

	for _, tc := range compressions {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := blobstore.NewMemoryStore()

			bf, err := New(500, 0.01)
			require.NoError(t, err)
			defer bf.Close()

			for i := 0; i < 200; i++ {
				require.NoError(t, bf.Add(fmt.Sprintf("blob-%d", i)))
			}

			require.NoError(t, bf.ExportToStore(ctx, store, "snapshots/filter.blm", WithCompression(tc.c)))

			restored, err := ImportFromStore(ctx, store, "snapshots/filter.blm")
			require.NoError(t, err)
			defer restored.Close()

			assert.Equal(t, uint64(200), restored.ElementsAdded())
			for i := 0; i < 200; i++ {
				assert.True(t, restored.Contains(fmt.Sprintf("blob-%d", i)))
			}
		})
	}
}

func TestFilterExportToStores(t *testing.T) {
	ctx := context.Background()
	stores := []blobstore.BlobStore{
		blobstore.NewMemoryStore(),
		blobstore.NewMemoryStore(),
	}

	bf, err := New(100, 0.01)
	require.NoError(t, err)
	defer bf.Close()
	require.NoError(t, bf.Add("replicated"))

	require.NoError(t, bf.ExportToStores(ctx, stores, "filter.blm"))

	for i, store := range stores {
		restored, err := ImportFromStore(ctx, store, "filter.blm")
		require.NoError(t, err, "store %d", i)
		assert.True(t, restored.Contains("replicated"))
		require.NoError(t, restored.Close())
	}
}

func TestFilterImportFromStoreMissing(t *testing.T) {
	_, err := ImportFromStore(context.Background(), blobstore.NewMemoryStore(), "absent.blm")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestFilterUseAfterClose(t *testing.T) {
	bf, err := New(100, 0.01)
	require.NoError(t, err)
	require.NoError(t, bf.Add("before"))

	require.NoError(t, bf.Close())
	require.NoError(t, bf.Close(), "close is idempotent")

	assert.ErrorIs(t, bf.Add("after"), ErrClosed)
	assert.False(t, bf.Contains("before"))
	assert.ErrorIs(t, bf.Clear(), ErrClosed)
	assert.ErrorIs(t, bf.Sync(), ErrClosed)
	assert.ErrorIs(t, bf.Export(filepath.Join(t.TempDir(), "x.blm")), ErrClosed)

	_, err = bf.WriteTo(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.Empty(t, bf.ExportHex())
}

func TestCloseRetainsHashFamily(t *testing.T) {
	bf, err := New(100, 0.01)
	require.NoError(t, err)
	require.NoError(t, bf.Close())

	// A lookup can pass the closed check just before Close's swap lands and
	// still reach hash derivation, so the stateless family must survive
	// Close; the re-check inside the hash paths then rejects the call.
	require.NotNil(t, bf.hashFamily)
	assert.NotPanics(t, func() {
		bf.hashFamily.DeriveHashes(7, "late-lookup")
	})
}

func TestFilterCustomHashFamily(t *testing.T) {
	hf := HashFamilyFunc(func(numHashes uint, key string) []uint64 {
		out := make([]uint64, numHashes)
		for i := range out {
			out[i] = uint64(len(key)*31 + i)
		}
		return out
	})

	bf, err := New(100, 0.01, WithHashFamily(hf))
	require.NoError(t, err)
	defer bf.Close()

	require.NoError(t, bf.Add("abc"))
	assert.True(t, bf.Contains("abc"))
	// Same length hashes identically under this family.
	assert.True(t, bf.Contains("xyz"))
}

func TestFilterMetrics(t *testing.T) {
	metrics := &BasicMetricsCollector{}

	bf, err := New(100, 0.01, WithMetricsCollector(metrics))
	require.NoError(t, err)
	defer bf.Close()

	require.NoError(t, bf.Add("a"))
	require.NoError(t, bf.Add("b"))
	bf.Contains("a")
	bf.Contains("never-added-and-unlikely")

	path := filepath.Join(t.TempDir(), "filter.blm")
	require.NoError(t, bf.Export(path))

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.AddCount)
	assert.Zero(t, stats.AddErrors)
	assert.Equal(t, int64(2), stats.ContainsCount)
	assert.GreaterOrEqual(t, stats.ContainsHits, int64(1))
	assert.Equal(t, int64(1), stats.ExportCount)
}

func TestFilterStats(t *testing.T) {
	bf, err := New(100, 0.01)
	require.NoError(t, err)
	defer bf.Close()

	require.NoError(t, bf.Add("one"))

	stats := bf.Stats()
	assert.Equal(t, uint64(959), stats.NumberBits)
	assert.Equal(t, uint64(100), stats.EstimatedElements)
	assert.Equal(t, uint(7), stats.NumberHashes)
	assert.Equal(t, float32(0.01), stats.TargetFalsePositiveRate)
	assert.Equal(t, uint64(120), stats.ByteLength)
	assert.Equal(t, uint64(1), stats.ElementsAdded)
	assert.Equal(t, uint64(140), stats.ExportSize)
	assert.False(t, stats.OnDisk)

	str := stats.String()
	assert.Contains(t, str, "bits: 959")
	assert.Contains(t, str, "elements added: 1")
	assert.Contains(t, str, "is on disk: no")
}

func BenchmarkFilterAdd(b *testing.B) {
	bf, err := New(uint64(b.N)+1, 0.01)
	require.NoError(b, err)
	defer bf.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bf.Add(fmt.Sprintf("key-%d", i))
	}
}

func BenchmarkFilterContains(b *testing.B) {
	bf, err := New(100000, 0.01)
	require.NoError(b, err)
	defer bf.Close()

	for i := 0; i < 100000; i++ {
		_ = bf.Add(fmt.Sprintf("key-%d", i))
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bf.Contains(fmt.Sprintf("key-%d", i%100000))
	}
}
