package bloomgo

// bitStore is the capability set shared by the two bit-array backings. Bit i
// lives at byte i/8, mask 1<<(i%8), in every serialized or mapped form.
type bitStore interface {
	// SetBit sets bit i. Concurrent SetBit calls never lose updates, even
	// within the same byte. No ordering is guaranteed relative to TestBit
	// on other bits.
	SetBit(i uint64)

	// TestBit reports whether bit i is set.
	TestBit(i uint64) bool

	// ClearBits zeroes the whole bit array. Not atomic with respect to
	// concurrent SetBit calls.
	ClearBits()

	// ByteLength returns the bit-array length in bytes, excluding any
	// trailer the backing may carry.
	ByteLength() uint64

	// Snapshot returns a copy of the raw bit-array bytes.
	Snapshot() []byte

	// PersistCounter write-through persists the insert counter for backings
	// with a durable trailer. A no-op for the heap backing.
	PersistCounter(elementsAdded uint64) error

	// Sync flushes outstanding bit updates to durable storage where the
	// backing supports it.
	Sync() error

	// Close releases the backing. The store must not be used afterwards.
	Close() error
}
