package fieldbuilder

import (
	"time"

	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/ftype"
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

// AddAbsTime builds an FT_ABSOLUTE_TIME field. Timestamp encodings vary
// enough across protocols (NTP epoch, Unix seconds, Unix nanos, ...) that
// decoding raw bytes into a time.Time is the caller's job; this operation
// only resolves the length and commits the already-decoded value (spec
// §4.4 "caller-decoded scalar types").
func AddAbsTime(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, length int, t time.Time, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.AbsTime)
	if err != nil {
		return nil, err
	}
	length, err = resolveLength(hfi.Type, buf, start, length)
	if err != nil {
		return nil, err
	}
	if err := buf.EnsureRemaining(start, length); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetAbsTime(t)
	return tree.AppendChild(parent, fi)
}

// AddRelTime builds an FT_RELATIVE_TIME field from a caller-decoded
// duration.
func AddRelTime(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, length int, d time.Duration, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.RelTime)
	if err != nil {
		return nil, err
	}
	length, err = resolveLength(hfi.Type, buf, start, length)
	if err != nil {
		return nil, err
	}
	if err := buf.EnsureRemaining(start, length); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetRelTime(d)
	return tree.AppendChild(parent, fi)
}

// AddFloat builds an FT_FLOAT field from a caller-decoded 32-bit value.
func AddFloat(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, length int, f float32, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.Float)
	if err != nil {
		return nil, err
	}
	length, err = resolveLength(hfi.Type, buf, start, length)
	if err != nil {
		return nil, err
	}
	if err := buf.EnsureRemaining(start, length); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetFloat(f)
	return tree.AppendChild(parent, fi)
}

// AddDouble builds an FT_DOUBLE field from a caller-decoded 64-bit value.
func AddDouble(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start, length int, f float64, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.Double)
	if err != nil {
		return nil, err
	}
	length, err = resolveLength(hfi.Type, buf, start, length)
	if err != nil {
		return nil, err
	}
	if err := buf.EnsureRemaining(start, length); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetDouble(f)
	return tree.AppendChild(parent, fi)
}
