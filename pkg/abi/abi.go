// Package abi defines the guest ABI shared between the host programs and
// puzzle modules: export names and the exchange buffer layout.
package abi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Default export names expected from puzzle modules.
const (
	// ExportMemory is the exported linear memory.
	ExportMemory = "memory"

	// ExportFreePointer returns the current free byte offset: () -> i32.
	ExportFreePointer = "get-free-ptr"

	// ExportAdvanceFreePointer advances the free offset by a byte count: (i32) -> ().
	ExportAdvanceFreePointer = "incr-free-ptr"

	// ExportEntry is the puzzle entry point: (i32) -> i32 for exchange
	// modules, () -> i32 for invoke modules.
	ExportEntry = "main"
)

// LengthPrefixSize is the size of the u32 little-endian length field that
// precedes every exchange buffer payload.
const LengthPrefixSize = 4

// MaxPayloadSize is the largest payload whose frame still fits a 32-bit
// address space.
const MaxPayloadSize = math.MaxUint32 - LengthPrefixSize

var (
	// ErrPayloadTooLarge is returned when a payload cannot be framed.
	ErrPayloadTooLarge = errors.New("payload exceeds 32-bit exchange buffer limit")

	// ErrShortFrame is returned when a frame is shorter than its length prefix claims.
	ErrShortFrame = errors.New("exchange buffer shorter than its length prefix")
)

// FrameSize returns the number of bytes an exchange buffer for a payload of
// the given length occupies.
func FrameSize(payloadLen int) (uint32, error) {
	if payloadLen < 0 || uint64(payloadLen) > MaxPayloadSize {
		return 0, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, payloadLen)
	}
	return uint32(payloadLen) + LengthPrefixSize, nil
}

// EncodeExchangeBuffer returns the payload framed with its length prefix.
func EncodeExchangeBuffer(payload []byte) ([]byte, error) {
	size, err := FrameSize(len(payload))
	if err != nil {
		return nil, err
	}

	frame := make([]byte, size)
	binary.LittleEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[LengthPrefixSize:], payload)
	return frame, nil
}

// DecodeExchangeBuffer reads one exchange buffer from the start of b.
// The returned payload aliases b.
func DecodeExchangeBuffer(b []byte) ([]byte, error) {
	if len(b) < LengthPrefixSize {
		return nil, ErrShortFrame
	}

	n := binary.LittleEndian.Uint32(b)
	if uint64(len(b)-LengthPrefixSize) < uint64(n) {
		return nil, fmt.Errorf("%w: prefix %d, have %d bytes", ErrShortFrame, n, len(b)-LengthPrefixSize)
	}

	return b[LengthPrefixSize : LengthPrefixSize+int(n)], nil
}
