package codec

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

const (
	// TrailerSize is the fixed byte length of the snapshot trailer.
	TrailerSize = 8 + 8 + 4

	// CounterOffsetFromEnd is the distance from EOF to the elements-added
	// field, used for in-place counter write-through on backing files.
	CounterOffsetFromEnd = 8 + 4

	// hexTrailerLen is the character length of the trailer in hex form.
	hexTrailerLen = 16 + 16 + 8
)

var (
	// ErrTruncated is returned when a snapshot is too short to hold a trailer.
	ErrTruncated = errors.New("codec: snapshot truncated")

	// ErrInvalidHexLength is returned when a hex snapshot has an odd length
	// or is too short to hold a trailer.
	ErrInvalidHexLength = errors.New("codec: invalid hex snapshot length")
)

// Snapshot is the serializable state of a filter: the raw bit array plus the
// scalar trailer fields. Derived sizing is intentionally absent.
type Snapshot struct {
	Bits              []byte
	EstimatedElements uint64
	ElementsAdded     uint64
	FalsePositiveRate float32
}

// Size returns the encoded byte length.
func (s *Snapshot) Size() uint64 {
	return uint64(len(s.Bits)) + TrailerSize
}

// Encode writes the binary form to w.
func Encode(w io.Writer, s *Snapshot) error {
	if _, err := w.Write(s.Bits); err != nil {
		return fmt.Errorf("codec: write bit array: %w", err)
	}

	var trailer [TrailerSize]byte
	EncodeTrailer(trailer[:], s.EstimatedElements, s.ElementsAdded, s.FalsePositiveRate)
	if _, err := w.Write(trailer[:]); err != nil {
		return fmt.Errorf("codec: write trailer: %w", err)
	}
	return nil
}

// Decode parses the binary form. The bit array slice references data.
func Decode(data []byte) (*Snapshot, error) {
	if len(data) < TrailerSize {
		return nil, ErrTruncated
	}

	split := len(data) - TrailerSize
	estimated, added, fpr := DecodeTrailer(data[split:])

	return &Snapshot{
		Bits:              data[:split],
		EstimatedElements: estimated,
		ElementsAdded:     added,
		FalsePositiveRate: fpr,
	}, nil
}

// EncodeTrailer writes the three scalar fields into dst, which must be at
// least TrailerSize bytes.
func EncodeTrailer(dst []byte, estimated, added uint64, fpr float32) {
	binary.LittleEndian.PutUint64(dst[0:8], estimated)
	binary.LittleEndian.PutUint64(dst[8:16], added)
	binary.LittleEndian.PutUint32(dst[16:20], math.Float32bits(fpr))
}

// DecodeTrailer parses the three scalar fields from src, which must be at
// least TrailerSize bytes.
func DecodeTrailer(src []byte) (estimated, added uint64, fpr float32) {
	estimated = binary.LittleEndian.Uint64(src[0:8])
	added = binary.LittleEndian.Uint64(src[8:16])
	fpr = math.Float32frombits(binary.LittleEndian.Uint32(src[16:20]))
	return estimated, added, fpr
}

// EncodeCounter writes the elements-added field in its trailer encoding into
// dst, which must be at least 8 bytes.
func EncodeCounter(dst []byte, added uint64) {
	binary.LittleEndian.PutUint64(dst[:8], added)
}

// EncodeHex renders the snapshot as a hex string: bit array first, then the
// trailer fields as fixed-width big-digit hex.
func EncodeHex(s *Snapshot) string {
	buf := make([]byte, 0, len(s.Bits)*2+hexTrailerLen)
	buf = append(buf, hex.EncodeToString(s.Bits)...)
	buf = fmt.Appendf(buf, "%016x%016x%08x",
		s.EstimatedElements, s.ElementsAdded, math.Float32bits(s.FalsePositiveRate))
	return string(buf)
}

// DecodeHex parses a hex snapshot. The trailer is taken from the 40-char
// tail; everything before it is the bit array.
func DecodeHex(str string) (*Snapshot, error) {
	if len(str)%2 != 0 || len(str) < hexTrailerLen {
		return nil, ErrInvalidHexLength
	}

	split := len(str) - hexTrailerLen

	bits, err := hex.DecodeString(str[:split])
	if err != nil {
		return nil, fmt.Errorf("codec: decode bit array: %w", err)
	}

	estimated, err := strconv.ParseUint(str[split:split+16], 16, 64)
	if err != nil {
		return nil, fmt.Errorf("codec: decode estimated elements: %w", err)
	}
	added, err := strconv.ParseUint(str[split+16:split+32], 16, 64)
	if err != nil {
		return nil, fmt.Errorf("codec: decode elements added: %w", err)
	}
	fprBits, err := strconv.ParseUint(str[split+32:], 16, 32)
	if err != nil {
		return nil, fmt.Errorf("codec: decode false positive rate: %w", err)
	}

	return &Snapshot{
		Bits:              bits,
		EstimatedElements: estimated,
		ElementsAdded:     added,
		FalsePositiveRate: math.Float32frombits(uint32(fprBits)),
	}, nil
}
