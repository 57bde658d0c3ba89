package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the frame format wrapped around a transported snapshot.
type Compression int

const (
	// CompressionNone transports the snapshot as raw bytes.
	CompressionNone Compression = iota
	// CompressionZstd wraps the snapshot in a zstd frame.
	CompressionZstd
	// CompressionLZ4 wraps the snapshot in an lz4 frame.
	CompressionLZ4
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// nopWriteCloser passes writes through for CompressionNone.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewCompressingWriter wraps w according to c. The returned writer must be
// closed to flush the frame; closing it does not close w.
func NewCompressingWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("codec: create zstd writer: %w", err)
		}
		return zw, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("codec: unknown compression %d", c)
	}
}

// NewDecompressingReader sniffs the frame magic of r and returns a reader
// yielding the raw snapshot bytes. Uncompressed input passes through.
func NewDecompressingReader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	magic, err := br.Peek(4)
	if err != nil {
		// Shorter than any frame magic: raw bytes (possibly a tiny or empty
		// snapshot, which the decoder rejects on its own terms).
		if err == io.EOF {
			return br, nil
		}
		return nil, fmt.Errorf("codec: sniff compression: %w", err)
	}

	switch {
	case bytes.Equal(magic, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("codec: create zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	case bytes.Equal(magic, lz4Magic):
		return lz4.NewReader(br), nil
	default:
		return br, nil
	}
}
