package fieldbuilder

import (
	"github.com/pktdissect/pktdissect/internal/ibuf"
	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/ftype"
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

// AddBytes builds an FT_BYTES field from a caller-declared length, or the
// rest of the buffer when length is -1.
func AddBytes(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, length int, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.Bytes)
	if err != nil {
		return nil, err
	}
	length, err = resolveLength(hfi.Type, buf, start, length)
	if err != nil {
		return nil, err
	}
	data, rerr := buf.Memcpy(start, length)
	if rerr != nil {
		return nil, rerr
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.AdoptBytes(ftype.Bytes, data)
	return tree.AppendChild(parent, fi)
}

// AddUintBytes builds an FT_UINT_BYTES field: an unsigned length prefix of
// prefixWidth bytes (1, 2, or 4) followed by that many data bytes (spec
// §4.4 "length-prefixed byte vectors"). The returned FI's Length covers the
// prefix and the data together.
func AddUintBytes(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, prefixWidth int, endian ibuf.Endianness, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.UintBytes)
	if err != nil {
		return nil, err
	}

	var n int
	switch prefixWidth {
	case 1:
		v, rerr := buf.U8(start)
		if rerr != nil {
			return nil, rerr
		}
		n = int(v)
	case 2:
		v, rerr := buf.U16(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		n = int(v)
	case 4:
		v, rerr := buf.U32(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		n = int(v)
	default:
		return nil, fatalf(ErrKindBadLength, "uint-bytes prefix width %d not supported", prefixWidth)
	}

	data, rerr := buf.Memcpy(start+prefixWidth, n)
	if rerr != nil {
		return nil, rerr
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, prefixWidth+n, o)
	fi.Value.AdoptBytes(ftype.UintBytes, data)
	return tree.AppendChild(parent, fi)
}

// AddString builds an FT_STRING field of a caller-declared length, or the
// rest of the buffer when length is -1.
func AddString(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, length int, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.String)
	if err != nil {
		return nil, err
	}
	length, err = resolveLength(hfi.Type, buf, start, length)
	if err != nil {
		return nil, err
	}
	data, rerr := buf.Memcpy(start, length)
	if rerr != nil {
		return nil, rerr
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetString(ftype.String, string(data))
	return tree.AppendChild(parent, fi)
}

// AddStringZ builds an FT_STRINGZ field. If length is -1, the text runs up
// to (not including) the first NUL found by scanning the buffer from start;
// the FI's Length is set to the scanned span including the terminator
// (spec §4.4 "lazy length resolution"). If length is given explicitly, the
// field is read as exactly that many bytes with no NUL-scanning.
func AddStringZ(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, length int, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.StringZ)
	if err != nil {
		return nil, err
	}
	resolved, err := resolveLength(hfi.Type, buf, start, length)
	if err != nil {
		return nil, err
	}

	var text []byte
	var fiLength int
	if resolved == -1 {
		spanWithNUL, rerr := buf.StrSize(start)
		if rerr != nil {
			return nil, rerr
		}
		text, rerr = buf.Memcpy(start, spanWithNUL-1)
		if rerr != nil {
			return nil, rerr
		}
		fiLength = spanWithNUL
	} else {
		text, err = buf.Memcpy(start, resolved)
		if err != nil {
			return nil, err
		}
		fiLength = resolved
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, fiLength, o)
	fi.Value.SetString(ftype.StringZ, string(text))
	return tree.AppendChild(parent, fi)
}

// AddUintString builds an FT_UINT_STRING field: an unsigned length prefix of
// prefixWidth bytes followed by that many bytes of text (no NUL
// terminator).
func AddUintString(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, prefixWidth int, endian ibuf.Endianness, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.UintString)
	if err != nil {
		return nil, err
	}

	var n int
	switch prefixWidth {
	case 1:
		v, rerr := buf.U8(start)
		if rerr != nil {
			return nil, rerr
		}
		n = int(v)
	case 2:
		v, rerr := buf.U16(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		n = int(v)
	case 4:
		v, rerr := buf.U32(start, endian)
		if rerr != nil {
			return nil, rerr
		}
		n = int(v)
	default:
		return nil, fatalf(ErrKindBadLength, "uint-string prefix width %d not supported", prefixWidth)
	}

	text, rerr := buf.Memcpy(start+prefixWidth, n)
	if rerr != nil {
		return nil, rerr
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, prefixWidth+n, o)
	fi.Value.SetString(ftype.UintString, string(text))
	return tree.AppendChild(parent, fi)
}
