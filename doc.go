// Package bloomgo provides a compact, persistence-capable Bloom filter for Go.
//
// A Bloom filter answers "has this key possibly been added?" using a fixed-size
// bit array and k derived hash values. It never produces false negatives and
// has a tunable, estimable false-positive rate.
//
// # Quick Start
//
// In-memory filter:
//
//	bf, _ := bloomgo.New(100000, 0.01)
//	defer bf.Close()
//
//	bf.Add("alice")
//	bf.Contains("alice") // true
//	bf.Contains("bob")   // false (almost certainly)
//
// File-backed filter (memory-mapped, survives restarts):
//
//	bf, _ := bloomgo.NewOnDisk(100000, 0.01, "./users.blm")
//	defer bf.Close()
//
//	bf.Add("alice")
//	// ... later, in another process:
//	bf, _ = bloomgo.ImportOnDisk("./users.blm")
//
// Cloud mode:
//
//	store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("filters/"))
//	_ = bf.ExportToStore(ctx, store, "users.blm")
//	bf, _ = bloomgo.ImportFromStore(ctx, store, "users.blm")
//
// # Sizing
//
// New derives the bit-array size m and hash-round count k from the estimated
// element count n and the target false-positive probability p:
//
//	m = ceil(-n * ln(p) / ln(2)^2)
//	k = round(ln(2) * m / n)
//
// The parameters are fixed at creation; the filter does not resize. After
// adding roughly n distinct keys, CurrentFalsePositiveRate approaches p.
//
// # Durability Model
//
// The on-disk variant maps the backing file with MAP_SHARED. Bit updates land
// in the mapped pages and reach disk via the OS write-back; the insert counter
// in the file trailer is additionally written through synchronously on every
// Add, so a reopened filter never under-reports how full it is.
//
// # Concurrency
//
// A Filter may be shared across goroutines. Individual bit updates never lose
// concurrent writes, but the k bits of one Add land one at a time: a Contains
// racing an Add of the same key may transiently return false. Callers needing
// "Add is visible before any Contains" must serialize externally.
//
// # Key Features
//
//   - No false negatives, bounded false-positive rate
//   - Heap or memory-mapped file backing, chosen at construction
//   - Wire-compatible binary and hex snapshot formats
//   - Pluggable hash family (chained MD5 by default)
//   - Cloud-native snapshot storage (S3/MinIO via BlobStore)
//   - Optional zstd/lz4 snapshot compression
package bloomgo
