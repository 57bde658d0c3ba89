package mmap

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Mapping is a writable MAP_SHARED view over an open file.
// It owns the byte slice and the descriptor and is responsible for both.
type Mapping struct {
	data   []byte
	f      *os.File
	size   int
	closed atomic.Bool
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
}

// OpenFile maps the whole file at path into memory, read-write shared.
// The descriptor is kept open for the lifetime of the mapping so that
// WriteAt can write through it.
func OpenFile(path string) (*Mapping, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap: stat %s: %w", path, err)
	}

	size := fi.Size()
	if size <= 0 {
		_ = f.Close()
		return nil, ErrInvalidSize
	}

	data, unmapFunc, err := osMap(f, int(size))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmap: map %s: %w", path, err)
	}

	return &Mapping{
		data:  data,
		f:     f,
		size:  int(size),
		unmap: unmapFunc,
	}, nil
}

// Close unmaps the memory and closes the descriptor. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	var err error
	if m.unmap != nil && m.data != nil {
		err = m.unmap(m.data)
		m.data = nil
	}
	if m.f != nil {
		if closeErr := m.f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		m.f = nil
	}
	return err
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() is called.
// Accessing the slice after Close() results in undefined behavior (likely a crash).
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// WriteAt writes p through the file descriptor at off. The page cache keeps
// the mapping coherent with descriptor writes, so the change is immediately
// visible through Bytes().
func (m *Mapping) WriteAt(p []byte, off int64) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 || off+int64(len(p)) > int64(m.size) {
		return 0, ErrInvalidOffset
	}
	return m.f.WriteAt(p, off)
}

// Sync flushes modified pages of the mapping to the backing file.
func (m *Mapping) Sync() error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osSync(m.data)
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}
