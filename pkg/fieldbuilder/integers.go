package fieldbuilder

import (
	"github.com/pktdissect/pktdissect/internal/ibuf"
	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/ftype"
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

// applyMask projects a raw unsigned field value through the HFI's bitmask
// and bitshift, per spec §4.4 step 4 ("bit-sliced fields"). A zero bitmask
// is a no-op.
func applyMask(raw uint64, hfi *registrar.HeaderFieldInfo) uint64 {
	if hfi.Bitmask == 0 {
		return raw
	}
	return (raw & hfi.Bitmask) >> hfi.Bitshift
}

// AddUint builds an 8/16/24/32-bit unsigned field. handle must be registered
// as one of those four types, or as FrameNum or IpxNet (both read as 32-bit
// values); Uint64 has its own entry point (AddUint64)
// because the source never applies bit-masking to 64-bit fields.
func AddUint(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, length int, endian ibuf.Endianness, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.Uint8, ftype.Uint16, ftype.Uint24, ftype.Uint32, ftype.FrameNum, ftype.IpxNet)
	if err != nil {
		return nil, err
	}
	length, err = resolveLength(hfi.Type, buf, start, length)
	if err != nil {
		return nil, err
	}

	var raw uint64
	switch hfi.Type {
	case ftype.Uint8:
		n, rerr := buf.U8(start)
		if rerr != nil {
			return nil, rerr
		}
		raw = uint64(n)
	case ftype.Uint16:
		n, rerr := buf.U16(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		raw = uint64(n)
	case ftype.Uint24:
		n, rerr := buf.U24(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		raw = uint64(n)
	case ftype.Uint32, ftype.FrameNum, ftype.IpxNet:
		n, rerr := buf.U32(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		raw = uint64(n)
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetUint(hfi.Type, applyMask(raw, hfi))
	return tree.AppendChild(parent, fi)
}

// AddUint64 builds a 64-bit unsigned field. No bitmask handling applies.
func AddUint64(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, length int, endian ibuf.Endianness, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.Uint64)
	if err != nil {
		return nil, err
	}
	length, err = resolveLength(hfi.Type, buf, start, length)
	if err != nil {
		return nil, err
	}
	n, rerr := buf.U64(start, endian)
	if rerr != nil {
		return nil, rerr
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetUint(ftype.Uint64, n)
	return tree.AppendChild(parent, fi)
}

// AddInt builds an 8/16/24/32-bit signed field. 24-bit reads are
// sign-extended from bit 23 (spec §4.4 "24-bit projection").
func AddInt(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, length int, endian ibuf.Endianness, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.Int8, ftype.Int16, ftype.Int24, ftype.Int32)
	if err != nil {
		return nil, err
	}
	length, err = resolveLength(hfi.Type, buf, start, length)
	if err != nil {
		return nil, err
	}

	var signed int64
	switch hfi.Type {
	case ftype.Int8:
		n, rerr := buf.U8(start)
		if rerr != nil {
			return nil, rerr
		}
		signed = int64(int8(n))
	case ftype.Int16:
		n, rerr := buf.U16(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		signed = int64(int16(n))
	case ftype.Int24:
		n, rerr := buf.U24(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		signed = int64(ibuf.SignExtend24(n))
	case ftype.Int32:
		n, rerr := buf.U32(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		signed = int64(int32(n))
	}

	if hfi.Bitmask != 0 {
		masked := (uint64(signed) & hfi.Bitmask) >> hfi.Bitshift
		signed = signExtendToWidth(masked, hfi.Bitmask)
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetInt(hfi.Type, signed)
	return tree.AppendChild(parent, fi)
}

// AddInt64 builds a 64-bit signed field. No bitmask handling applies.
func AddInt64(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, length int, endian ibuf.Endianness, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.Int64)
	if err != nil {
		return nil, err
	}
	length, err = resolveLength(hfi.Type, buf, start, length)
	if err != nil {
		return nil, err
	}
	n, rerr := buf.U64(start, endian)
	if rerr != nil {
		return nil, rerr
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetInt(ftype.Int64, int64(n))
	return tree.AppendChild(parent, fi)
}

// signExtendToWidth sign-extends a masked-and-shifted value whose width is
// implied by the highest set bit of the (unshifted) mask, so a bit-sliced
// signed subfield still reads negative when its top slice bit is set.
func signExtendToWidth(masked uint64, mask uint64) int64 {
	width := bitsNeeded(mask >> trailingZeros(mask))
	if width == 0 || width >= 64 {
		return int64(masked)
	}
	signBit := uint64(1) << (width - 1)
	if masked&signBit != 0 {
		return int64(masked | (^uint64(0) << width))
	}
	return int64(masked)
}

func trailingZeros(m uint64) uint {
	if m == 0 {
		return 0
	}
	var n uint
	for m&1 == 0 {
		m >>= 1
		n++
	}
	return n
}

func bitsNeeded(m uint64) uint {
	var n uint
	for m != 0 {
		n++
		m >>= 1
	}
	return n
}

// AddBool builds an FT_BOOLEAN field from an unsigned container read of the
// given width (1/2/3/4/8 bytes), masked per the HFI's bitmask the same way
// as AddUint.
func AddBool(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, containerWidth int, endian ibuf.Endianness, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.Bool)
	if err != nil {
		return nil, err
	}
	// FT_BOOLEAN's container width is caller-declared (the bits backing a
	// flag can live in a 1..8 byte field), unlike ftype.FixedWidth's
	// single-byte default, so length is taken from containerWidth directly.
	length := containerWidth

	var raw uint64
	switch containerWidth {
	case 1:
		n, rerr := buf.U8(start)
		if rerr != nil {
			return nil, rerr
		}
		raw = uint64(n)
	case 2:
		n, rerr := buf.U16(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		raw = uint64(n)
	case 3:
		n, rerr := buf.U24(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		raw = uint64(n)
	case 4:
		n, rerr := buf.U32(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		raw = uint64(n)
	case 8:
		n, rerr := buf.U64(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		raw = n
	default:
		return nil, fatalf(ErrKindBadLength, "boolean container width %d not supported", containerWidth)
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetBool(applyMask(raw, hfi))
	return tree.AppendChild(parent, fi)
}
