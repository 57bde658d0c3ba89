package bloomgo

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync/atomic"
	"time"

	"github.com/hupe1980/bloomgo/codec"
)

// Filter is a fixed-size Bloom filter. Membership answers have no false
// negatives; false positives occur at a rate approaching the configured
// target as the filter fills.
//
// A Filter is safe for concurrent use, with the visibility caveats described
// in the package documentation. It must be closed when no longer needed;
// this matters for the file-backed variant, which holds a mapping and an
// open descriptor.
type Filter struct {
	estimatedElements uint64
	falsePositiveRate float32
	params            parameters
	elementsAdded     atomic.Uint64

	hashFamily HashFamily
	store      bitStore
	onDisk     bool
	closed     atomic.Bool

	logger  *Logger
	metrics MetricsCollector
}

// New creates a heap-backed filter sized for estimatedElements keys at the
// target falsePositiveRate, which must lie in the open interval (0, 1).
func New(estimatedElements uint64, falsePositiveRate float64, optFns ...Option) (*Filter, error) {
	// Sizing and persistence use the float32-rounded rate, so the rounded
	// value is what must stay inside (0, 1): a tiny rate can underflow to 0
	// and a rate close to 1 can round up to exactly 1.
	fpr := float32(falsePositiveRate)
	if err := validateParameters(estimatedElements, float64(fpr)); err != nil {
		return nil, err
	}

	o := applyOptions(optFns)
	params := deriveParameters(estimatedElements, fpr)

	f := &Filter{
		estimatedElements: estimatedElements,
		falsePositiveRate: fpr,
		params:            params,
		hashFamily:        o.hashFamily,
		store:             newHeapStore(params.byteLength),
		logger:            o.logger,
		metrics:           o.metricsCollector,
	}
	f.logger.LogCreate(estimatedElements, falsePositiveRate, params.numberBits, params.numberHashes, false)
	return f, nil
}

// NewOnDisk creates a file-backed filter at path. The file is written with a
// zeroed bit array and trailer, then reopened memory-mapped, so a crash
// between creation and first use leaves a valid empty filter behind.
func NewOnDisk(estimatedElements uint64, falsePositiveRate float64, path string, optFns ...Option) (*Filter, error) {
	fpr := float32(falsePositiveRate)
	if err := validateParameters(estimatedElements, float64(fpr)); err != nil {
		return nil, err
	}

	params := deriveParameters(estimatedElements, fpr)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("bloomgo: create %s: %w", path, err)
	}

	snap := &codec.Snapshot{
		Bits:              make([]byte, params.byteLength),
		EstimatedElements: estimatedElements,
		FalsePositiveRate: fpr,
	}
	if err := codec.Encode(file, snap); err != nil {
		_ = file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("bloomgo: close %s: %w", path, err)
	}

	return ImportOnDisk(path, optFns...)
}

// Import reads a binary snapshot into a fresh heap-backed filter. Sizing is
// recomputed from the persisted scalars.
func Import(path string, optFns ...Option) (*Filter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bloomgo: read %s: %w", path, err)
	}

	snap, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	return fromSnapshot(snap, optFns)
}

// ImportOnDisk opens an existing backing file and maps it in place. Sizing is
// recomputed from the persisted trailer; the mapping stays live until Close.
func ImportOnDisk(path string, optFns ...Option) (*Filter, error) {
	o := applyOptions(optFns)

	store, err := newMappedStore(path)
	if err != nil {
		return nil, err
	}

	estimated, added, fpr := codec.DecodeTrailer(store.trailer())
	if err := validateParameters(estimated, float64(fpr)); err != nil {
		_ = store.Close()
		return nil, err
	}

	params := deriveParameters(estimated, fpr)
	if params.byteLength != store.ByteLength() {
		_ = store.Close()
		return nil, fmt.Errorf("%w: file has %d bit-array bytes, derived %d",
			ErrInvalidSnapshot, store.ByteLength(), params.byteLength)
	}

	f := &Filter{
		estimatedElements: estimated,
		falsePositiveRate: fpr,
		params:            params,
		hashFamily:        o.hashFamily,
		store:             store,
		onDisk:            true,
		logger:            o.logger.WithPath(path),
		metrics:           o.metricsCollector,
	}
	f.elementsAdded.Store(added)
	f.logger.LogCreate(estimated, float64(fpr), params.numberBits, params.numberHashes, true)
	return f, nil
}

// ImportHex builds a heap-backed filter from a hex snapshot string.
func ImportHex(str string, optFns ...Option) (*Filter, error) {
	snap, err := codec.DecodeHex(str)
	if err != nil {
		if errors.Is(err, codec.ErrInvalidHexLength) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidHexLength, err)
		}
		return nil, err
	}
	return fromSnapshot(snap, optFns)
}

// fromSnapshot builds a heap-backed filter from a decoded snapshot, shared by
// every non-mapped import path.
func fromSnapshot(snap *codec.Snapshot, optFns []Option) (*Filter, error) {
	o := applyOptions(optFns)

	if err := validateParameters(snap.EstimatedElements, float64(snap.FalsePositiveRate)); err != nil {
		return nil, err
	}

	params := deriveParameters(snap.EstimatedElements, snap.FalsePositiveRate)
	if params.byteLength != uint64(len(snap.Bits)) {
		return nil, fmt.Errorf("%w: snapshot has %d bit-array bytes, derived %d",
			ErrInvalidSnapshot, len(snap.Bits), params.byteLength)
	}

	f := &Filter{
		estimatedElements: snap.EstimatedElements,
		falsePositiveRate: snap.FalsePositiveRate,
		params:            params,
		hashFamily:        o.hashFamily,
		store:             newHeapStoreFromBits(snap.Bits),
		logger:            o.logger,
		metrics:           o.metricsCollector,
	}
	f.elementsAdded.Store(snap.ElementsAdded)
	f.logger.LogCreate(snap.EstimatedElements, float64(snap.FalsePositiveRate), params.numberBits, params.numberHashes, false)
	return f, nil
}

// Add inserts key into the filter. Duplicate keys are indistinguishable from
// first inserts: the filter cannot detect them, and every call increments the
// insert counter.
func (f *Filter) Add(key string) error {
	if f.closed.Load() {
		return ErrClosed
	}
	return f.AddHashes(f.hashFamily.DeriveHashes(f.params.numberHashes, key))
}

// AddHashes inserts using precomputed hashes, which callers can reuse across
// several filters built with the same hash family. At least NumberHashes
// values are required; fewer is rejected without touching any bit.
func (f *Filter) AddHashes(hashes []uint64) error {
	start := time.Now()
	err := f.addHashes(hashes)
	f.metrics.RecordAdd(time.Since(start), err)
	return err
}

func (f *Filter) addHashes(hashes []uint64) error {
	if f.closed.Load() {
		return ErrClosed
	}
	if uint(len(hashes)) < f.params.numberHashes {
		return fmt.Errorf("%w: need %d, got %d", ErrInsufficientHashes, f.params.numberHashes, len(hashes))
	}

	for i := uint(0); i < f.params.numberHashes; i++ {
		f.store.SetBit(hashes[i] % f.params.numberBits)
	}

	added := f.elementsAdded.Add(1)
	if !f.onDisk {
		return nil
	}

	start := time.Now()
	err := f.store.PersistCounter(added)
	f.metrics.RecordPersist(time.Since(start), err)
	f.logger.LogPersist(added, err)
	if err != nil {
		return fmt.Errorf("bloomgo: persist counter: %w", err)
	}
	return nil
}

// Contains reports whether key has possibly been added. A false result is
// authoritative; a true result is wrong with probability at most roughly
// CurrentFalsePositiveRate.
func (f *Filter) Contains(key string) bool {
	if f.closed.Load() {
		return false
	}
	hit, _ := f.ContainsHashes(f.hashFamily.DeriveHashes(f.params.numberHashes, key))
	return hit
}

// ContainsHashes is Contains with precomputed hashes. Fewer than NumberHashes
// values is rejected.
func (f *Filter) ContainsHashes(hashes []uint64) (bool, error) {
	start := time.Now()
	hit, err := f.containsHashes(hashes)
	f.metrics.RecordContains(time.Since(start), hit)
	return hit, err
}

func (f *Filter) containsHashes(hashes []uint64) (bool, error) {
	if f.closed.Load() {
		return false, ErrClosed
	}
	if uint(len(hashes)) < f.params.numberHashes {
		return false, fmt.Errorf("%w: need %d, got %d", ErrInsufficientHashes, f.params.numberHashes, len(hashes))
	}

	for i := uint(0); i < f.params.numberHashes; i++ {
		if !f.store.TestBit(hashes[i] % f.params.numberBits) {
			return false, nil
		}
	}
	return true, nil
}

// Clear zeroes every bit and resets the insert counter. For the file-backed
// variant the cleared counter is written through immediately, so a reopened
// filter never reports stale fullness.
func (f *Filter) Clear() error {
	if f.closed.Load() {
		return ErrClosed
	}

	f.store.ClearBits()
	f.elementsAdded.Store(0)

	if !f.onDisk {
		return nil
	}
	if err := f.store.PersistCounter(0); err != nil {
		return fmt.Errorf("bloomgo: persist counter: %w", err)
	}
	return nil
}

// CurrentFalsePositiveRate estimates the probability that Contains answers
// true for a never-added key, based on actual insert calls rather than the
// construction-time target:
//
//	(1 - e^(-k*elementsAdded/m))^k
//
// The estimate assumes distinct inserts; duplicate Add calls inflate it.
func (f *Filter) CurrentFalsePositiveRate() float64 {
	k := float64(f.params.numberHashes)
	m := float64(f.params.numberBits)
	added := float64(f.elementsAdded.Load())

	return math.Pow(1-math.Exp(-k*added/m), k)
}

// ElementsAdded returns the number of Add calls since creation or Clear.
func (f *Filter) ElementsAdded() uint64 {
	return f.elementsAdded.Load()
}

// EstimatedElements returns the capacity the filter was sized for.
func (f *Filter) EstimatedElements() uint64 {
	return f.estimatedElements
}

// FalsePositiveRate returns the construction-time target probability.
func (f *Filter) FalsePositiveRate() float32 {
	return f.falsePositiveRate
}

// NumberBits returns m, the bit-array size in bits.
func (f *Filter) NumberBits() uint64 {
	return f.params.numberBits
}

// NumberHashes returns k, the number of hash rounds per key.
func (f *Filter) NumberHashes() uint {
	return f.params.numberHashes
}

// OnDisk reports whether the filter is backed by a memory-mapped file.
func (f *Filter) OnDisk() bool {
	return f.onDisk
}

// Sync flushes outstanding bit updates of a file-backed filter to disk.
// A no-op for heap-backed filters.
func (f *Filter) Sync() error {
	if f.closed.Load() {
		return ErrClosed
	}
	return f.store.Sync()
}

// Close releases the backing store and zeroes the filter's scalar state so
// use-after-close fails loudly instead of answering from freed state.
// It is idempotent.
//
// The hash family is deliberately retained: a Contains racing Close may pass
// the closed check before the swap lands, and the stateless family keeps the
// derivation step safe while the re-check inside the hash paths rejects the
// call.
func (f *Filter) Close() error {
	if f.closed.Swap(true) {
		return nil
	}

	err := f.store.Close()

	f.estimatedElements = 0
	f.falsePositiveRate = 0
	f.params = parameters{}
	f.elementsAdded.Store(0)
	f.onDisk = false

	return err
}

// snapshot captures the serializable state. The bit copy and the counter read
// are not atomic with respect to concurrent inserts; exporting while writing
// yields a valid snapshot of no particular instant.
func (f *Filter) snapshot() *codec.Snapshot {
	return &codec.Snapshot{
		Bits:              f.store.Snapshot(),
		EstimatedElements: f.estimatedElements,
		ElementsAdded:     f.elementsAdded.Load(),
		FalsePositiveRate: f.falsePositiveRate,
	}
}
