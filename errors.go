package bloomgo

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when an operation is attempted on a closed filter.
	ErrClosed = errors.New("bloomgo: filter is closed")

	// ErrInsufficientHashes is returned by AddHashes/ContainsHashes when fewer
	// hashes are supplied than the filter's hash-round count. The filter state
	// is not modified.
	ErrInsufficientHashes = errors.New("bloomgo: not enough hashes supplied")

	// ErrInvalidHexLength is returned by ImportHex when the hex string cannot
	// contain a well-formed trailer plus bit array.
	ErrInvalidHexLength = errors.New("bloomgo: invalid hex string length")

	// ErrInvalidSnapshot is returned by import paths when the persisted bit
	// array length does not match the sizing derived from the persisted
	// scalars.
	ErrInvalidSnapshot = errors.New("bloomgo: snapshot does not match derived sizing")
)

// ErrInvalidEstimatedElements indicates an estimated element count of zero.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidEstimatedElements struct {
	EstimatedElements uint64
	cause             error
}

func (e *ErrInvalidEstimatedElements) Error() string {
	return fmt.Sprintf("invalid estimated elements: %d", e.EstimatedElements)
}

func (e *ErrInvalidEstimatedElements) Unwrap() error { return e.cause }

// ErrInvalidFalsePositiveRate indicates a target false-positive probability
// outside the open interval (0, 1).
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidFalsePositiveRate struct {
	FalsePositiveRate float64
	cause             error
}

func (e *ErrInvalidFalsePositiveRate) Error() string {
	return fmt.Sprintf("invalid false positive rate: %f", e.FalsePositiveRate)
}

func (e *ErrInvalidFalsePositiveRate) Unwrap() error { return e.cause }
