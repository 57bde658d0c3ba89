package bloomgo

import (
	"sync"

	"github.com/hupe1980/bloomgo/codec"
	"github.com/hupe1980/bloomgo/internal/mmap"
)

// numByteLocks is the size of the sharded lock table guarding byte-level
// read-modify-write on the mapped region.
const numByteLocks = 256

// mappedStore keeps the bit array in a writable MAP_SHARED view over the
// backing file. Bit updates mutate the mapped pages directly; durability of
// the bits follows the OS write-back, while the insert counter is written
// through the descriptor synchronously.
type mappedStore struct {
	m          *mmap.Mapping
	byteLength uint64
	locks      [numByteLocks]sync.RWMutex
	persistMu  sync.Mutex
	counterOff int64
}

// newMappedStore maps the file at path, which must already hold a full
// snapshot (bit array plus trailer).
func newMappedStore(path string) (*mappedStore, error) {
	m, err := mmap.OpenFile(path)
	if err != nil {
		return nil, err
	}

	if m.Size() < codec.TrailerSize {
		_ = m.Close()
		return nil, codec.ErrTruncated
	}

	// Bloom probes are uniformly distributed.
	_ = m.Advise(mmap.AccessRandom)

	return &mappedStore{
		m:          m,
		byteLength: uint64(m.Size() - codec.TrailerSize),
		counterOff: int64(m.Size() - codec.CounterOffsetFromEnd),
	}, nil
}

// trailer returns the raw trailer bytes of the mapped snapshot.
func (s *mappedStore) trailer() []byte {
	data := s.m.Bytes()
	return data[s.byteLength:]
}

func (s *mappedStore) SetBit(i uint64) {
	byteIdx := i >> 3
	mask := byte(1 << (i & 7))

	mu := &s.locks[byteIdx%numByteLocks]
	mu.Lock()
	s.m.Bytes()[byteIdx] |= mask
	mu.Unlock()
}

func (s *mappedStore) TestBit(i uint64) bool {
	byteIdx := i >> 3
	mask := byte(1 << (i & 7))

	mu := &s.locks[byteIdx%numByteLocks]
	mu.RLock()
	set := s.m.Bytes()[byteIdx]&mask != 0
	mu.RUnlock()
	return set
}

func (s *mappedStore) ClearBits() {
	clear(s.m.Bytes()[:s.byteLength])
}

func (s *mappedStore) ByteLength() uint64 {
	return s.byteLength
}

func (s *mappedStore) Snapshot() []byte {
	buf := make([]byte, s.byteLength)
	copy(buf, s.m.Bytes())
	return buf
}

// PersistCounter writes the insert counter into the trailer through the file
// descriptor. The write is serialized so concurrent inserts cannot interleave
// their counter bytes.
func (s *mappedStore) PersistCounter(elementsAdded uint64) error {
	var buf [8]byte
	codec.EncodeCounter(buf[:], elementsAdded)

	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	_, err := s.m.WriteAt(buf[:], s.counterOff)
	return err
}

func (s *mappedStore) Sync() error {
	return s.m.Sync()
}

func (s *mappedStore) Close() error {
	return s.m.Close()
}
