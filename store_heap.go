package bloomgo

import (
	"encoding/binary"
	"sync/atomic"
)

// heapStore keeps the bit array in process memory as 64-bit words accessed
// atomically. Word bits are numbered little-endian, so the byte image of the
// word slice is exactly the serialized bit-array layout.
type heapStore struct {
	words      []atomic.Uint64
	byteLength uint64
}

func newHeapStore(byteLength uint64) *heapStore {
	return &heapStore{
		words:      make([]atomic.Uint64, (byteLength+7)/8),
		byteLength: byteLength,
	}
}

// newHeapStoreFromBits builds a store preloaded with a serialized bit array.
func newHeapStoreFromBits(bits []byte) *heapStore {
	s := newHeapStore(uint64(len(bits)))
	for i := range s.words {
		var word [8]byte
		copy(word[:], bits[i*8:])
		s.words[i].Store(binary.LittleEndian.Uint64(word[:]))
	}
	return s
}

func (s *heapStore) SetBit(i uint64) {
	w := &s.words[i>>6]
	mask := uint64(1) << (i & 63)
	for {
		old := w.Load()
		if old&mask != 0 || w.CompareAndSwap(old, old|mask) {
			return
		}
	}
}

func (s *heapStore) TestBit(i uint64) bool {
	return s.words[i>>6].Load()&(1<<(i&63)) != 0
}

func (s *heapStore) ClearBits() {
	for i := range s.words {
		s.words[i].Store(0)
	}
}

func (s *heapStore) ByteLength() uint64 {
	return s.byteLength
}

func (s *heapStore) Snapshot() []byte {
	buf := make([]byte, len(s.words)*8)
	for i := range s.words {
		binary.LittleEndian.PutUint64(buf[i*8:], s.words[i].Load())
	}
	return buf[:s.byteLength]
}

func (s *heapStore) PersistCounter(uint64) error { return nil }

func (s *heapStore) Sync() error { return nil }

func (s *heapStore) Close() error {
	s.words = nil
	return nil
}
