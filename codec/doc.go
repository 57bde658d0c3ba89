// Package codec defines the serialized forms of a Bloom filter snapshot.
//
// # Binary Layout
//
// A snapshot is the raw bit array followed by a fixed 20-byte trailer:
//
//	offset 0              : byteLength bytes, bit array (bit i at byte i/8, mask 1<<(i%8))
//	offset byteLength     : 8 bytes, estimated elements (uint64)
//	offset byteLength + 8 : 8 bytes, elements added (uint64)
//	offset byteLength + 16: 4 bytes, false-positive probability (IEEE-754 float32)
//
// All trailer fields are little-endian. The originating C format used
// platform-native order; fixing little-endian keeps files byte-identical on
// x86 and little-endian ARM while making the format portable. Big-endian
// writers of the original format are not supported.
//
// The derived sizing (number of bits, number of hashes) is never serialized;
// decoders recompute it from the persisted scalars.
//
// # Hex Form
//
// The hex string is the bit array as 2 lowercase hex chars per byte, followed
// by 16 hex digits of the estimated-element count, 16 hex digits of the
// elements-added count, and 8 hex digits of the float32 bit pattern, each
// most-significant-digit first. The trailer is parsed from the 40-char tail,
// so the numeric fields are endianness-independent as encoded.
//
// # Compression
//
// Compression applies to transported snapshots (blob stores), never to the
// mmap backing file, whose layout must stay byte-addressable. Readers sniff
// the zstd/lz4 frame magic, so decoding needs no out-of-band flag.
package codec
