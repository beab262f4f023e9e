// Package tvb is the engine's reference byte-buffer facade (spec §4.1):
// the external collaborator that field builders read packet octets from.
// Packet capture, file formats, and reassembly are out of scope (spec §1);
// this package supplies only the typed-read contract the core depends on,
// plus two concrete backings (an in-memory one and a memory-mapped one).
package tvb

import (
	"fmt"

	"github.com/pktdissect/pktdissect/internal/ibuf"
)

// SourceID identifies a buffer's underlying data source for cross-buffer
// offset comparisons (spec glossary: "data-source buffer"). Two Buffers
// backed by the same capture frame must return equal SourceIDs.
type SourceID uintptr

// BoundsError is the bounded-read fault raised by any out-of-range access
// (spec §7 category 2). It carries enough context for a dissector-level
// catch to append a truncation marker.
type BoundsError struct {
	Op     string
	Offset int
	Length int
	Avail  int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("tvb: %s out of bounds: offset=%d length=%d available=%d", e.Op, e.Offset, e.Length, e.Avail)
}

// Buffer is the byte-buffer facade every field builder operation reads
// through (spec §4.1). Implementations must treat any out-of-range access
// as a *BoundsError, never a panic.
type Buffer interface {
	U8(off int) (uint8, error)
	U16(off int, e ibuf.Endianness) (uint16, error)
	U24(off int, e ibuf.Endianness) (uint32, error)
	U32(off int, e ibuf.Endianness) (uint32, error)
	U64(off int, e ibuf.Endianness) (uint64, error)

	// Memcpy returns a copy of the n bytes at off.
	Memcpy(off, n int) ([]byte, error)

	// GetPtr returns a borrowed, zero-copy view of the n bytes at off. The
	// returned slice aliases the backing storage and must be copied by the
	// caller before the buffer is released (spec §5 "Buffer bytes read via
	// borrow a pointer").
	GetPtr(off, n int) ([]byte, error)

	// StrSize returns the length up to and including the first NUL byte at
	// or after off, or an error if no NUL is found before the end of the
	// buffer.
	StrSize(off int) (int, error)

	// Length returns the total length of this buffer.
	Length() int

	// EnsureRemaining raises a *BoundsError unless at least n bytes remain
	// starting at off.
	EnsureRemaining(off, n int) error

	// RawOffset returns the offset of this buffer inside its data source.
	RawOffset() int

	// DataSource returns this buffer's data-source identity.
	DataSource() SourceID
}
