package bloomgo

import "fmt"

// Stats is a read-only snapshot of a filter's parameters and fill state,
// intended for diagnostics and monitoring. Collecting it performs no
// mutation.
type Stats struct {
	NumberBits               uint64
	EstimatedElements        uint64
	NumberHashes             uint
	TargetFalsePositiveRate  float32
	ByteLength               uint64
	ElementsAdded            uint64
	CurrentFalsePositiveRate float64
	ExportSize               uint64
	OnDisk                   bool
}

// Stats returns the current diagnostic snapshot.
func (f *Filter) Stats() Stats {
	return Stats{
		NumberBits:               f.params.numberBits,
		EstimatedElements:        f.estimatedElements,
		NumberHashes:             f.params.numberHashes,
		TargetFalsePositiveRate:  f.falsePositiveRate,
		ByteLength:               f.params.byteLength,
		ElementsAdded:            f.elementsAdded.Load(),
		CurrentFalsePositiveRate: f.CurrentFalsePositiveRate(),
		ExportSize:               f.ExportSize(),
		OnDisk:                   f.onDisk,
	}
}

// String renders the snapshot in a human-readable multi-line form.
func (s Stats) String() string {
	onDisk := "no"
	if s.OnDisk {
		onDisk = "yes"
	}
	return fmt.Sprintf(`BloomFilter
	bits: %d
	estimated elements: %d
	number hashes: %d
	max false positive rate: %f
	bloom length (8 bits): %d
	elements added: %d
	current false positive rate: %f
	export size (bytes): %d
	is on disk: %s
`,
		s.NumberBits, s.EstimatedElements, s.NumberHashes,
		s.TargetFalsePositiveRate, s.ByteLength, s.ElementsAdded,
		s.CurrentFalsePositiveRate, s.ExportSize, onDisk)
}
