// Package mmap provides writable memory-mapped file access.
//
// # Overview
//
// A Mapping is a MAP_SHARED view over an open file. Stores through Bytes()
// land in the page cache and reach disk via the OS write-back; Sync() forces
// them out, and WriteAt() writes through the file descriptor for ranges that
// must be durable without flushing the whole mapping.
//
// # Usage
//
//	m, err := mmap.OpenFile("filter.blm")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	data[0] |= 1          // visible to every mapping of the file
//	m.WriteAt(counter, off) // synchronous write-through
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2), msync(2), madvise(2)
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// # Thread Safety
//
// Concurrent access to Bytes() is the caller's responsibility. Close() is
// idempotent and protected by atomic operations, but callers must ensure no
// goroutine touches the slice after Close() returns.
package mmap
