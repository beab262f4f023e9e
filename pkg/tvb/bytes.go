package tvb

import (
	"github.com/pktdissect/pktdissect/internal/ibuf"
)

// BytesBuffer is the straightforward in-memory Buffer backing: a byte slice
// plus the raw offset and data-source identity it was carved from.
type BytesBuffer struct {
	data      []byte
	rawOffset int
	source    SourceID
}

// New wraps data as a top-level Buffer: RawOffset is 0 and DataSource is a
// fresh identity distinct from every other buffer created by New or Bytes.
func New(data []byte) *BytesBuffer {
	return &BytesBuffer{data: data, source: newSourceID()}
}

// Bytes wraps data as a Buffer that shares dataSource's identity but has its
// own rawOffset, for building a sub-buffer (e.g. a sub-protocol's payload)
// that must still compare equal under DataSource to its parent frame.
func Bytes(data []byte, rawOffset int, source SourceID) *BytesBuffer {
	return &BytesBuffer{data: data, rawOffset: rawOffset, source: source}
}

var sourceCounter uintptr

func newSourceID() SourceID {
	sourceCounter++
	return SourceID(sourceCounter)
}

func (b *BytesBuffer) Length() int { return len(b.data) }

func (b *BytesBuffer) RawOffset() int { return b.rawOffset }

func (b *BytesBuffer) DataSource() SourceID { return b.source }

func (b *BytesBuffer) EnsureRemaining(off, n int) error {
	if !ibuf.Has(b.data, off, n) {
		return &BoundsError{Op: "EnsureRemaining", Offset: off, Length: n, Avail: len(b.data) - off}
	}
	return nil
}

func (b *BytesBuffer) U8(off int) (uint8, error) {
	s, ok := ibuf.Slice(b.data, off, 1)
	if !ok {
		return 0, &BoundsError{Op: "U8", Offset: off, Length: 1, Avail: len(b.data) - off}
	}
	return s[0], nil
}

func (b *BytesBuffer) U16(off int, e ibuf.Endianness) (uint16, error) {
	s, ok := ibuf.Slice(b.data, off, 2)
	if !ok {
		return 0, &BoundsError{Op: "U16", Offset: off, Length: 2, Avail: len(b.data) - off}
	}
	v, _ := ibuf.U16(s, e)
	return v, nil
}

func (b *BytesBuffer) U24(off int, e ibuf.Endianness) (uint32, error) {
	s, ok := ibuf.Slice(b.data, off, 3)
	if !ok {
		return 0, &BoundsError{Op: "U24", Offset: off, Length: 3, Avail: len(b.data) - off}
	}
	v, _ := ibuf.U24(s, e)
	return v, nil
}

func (b *BytesBuffer) U32(off int, e ibuf.Endianness) (uint32, error) {
	s, ok := ibuf.Slice(b.data, off, 4)
	if !ok {
		return 0, &BoundsError{Op: "U32", Offset: off, Length: 4, Avail: len(b.data) - off}
	}
	v, _ := ibuf.U32(s, e)
	return v, nil
}

func (b *BytesBuffer) U64(off int, e ibuf.Endianness) (uint64, error) {
	s, ok := ibuf.Slice(b.data, off, 8)
	if !ok {
		return 0, &BoundsError{Op: "U64", Offset: off, Length: 8, Avail: len(b.data) - off}
	}
	v, _ := ibuf.U64(s, e)
	return v, nil
}

func (b *BytesBuffer) Memcpy(off, n int) ([]byte, error) {
	s, ok := ibuf.Slice(b.data, off, n)
	if !ok {
		return nil, &BoundsError{Op: "Memcpy", Offset: off, Length: n, Avail: len(b.data) - off}
	}
	cp := make([]byte, n)
	copy(cp, s)
	return cp, nil
}

func (b *BytesBuffer) GetPtr(off, n int) ([]byte, error) {
	s, ok := ibuf.Slice(b.data, off, n)
	if !ok {
		return nil, &BoundsError{Op: "GetPtr", Offset: off, Length: n, Avail: len(b.data) - off}
	}
	return s, nil
}

func (b *BytesBuffer) StrSize(off int) (int, error) {
	nul := ibuf.IndexNUL(b.data, off)
	if nul < 0 {
		return 0, &BoundsError{Op: "StrSize", Offset: off, Length: -1, Avail: len(b.data) - off}
	}
	return nul - off + 1, nil
}
