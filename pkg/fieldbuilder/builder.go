// Package fieldbuilder implements the "add field" operation family every
// dissector uses to turn buffer bytes into typed, tree-attached fields
// (spec §4.4). Every Add* function follows the same skeleton: resolve the
// HFI, resolve the effective length, build a FieldInfo locally, project
// bytes into its Value, and only then commit it as a child of parent. A
// projection failure (a buffer bounds fault) is returned before the FI is
// ever linked into the tree, so no partial field is ever observable (spec
// §7).
package fieldbuilder

import (
	"fmt"

	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/ftype"
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

// ErrKind classifies a FatalError raised by a misused Add* call (spec §7
// category 1).
type ErrKind int

const (
	ErrKindUnknownHandle ErrKind = iota
	ErrKindWrongType
	ErrKindBadLength
)

// FatalError reports dissector misuse: wrong add-operation family for the
// field's registered type, or an invalid length for a fixed-width type.
type FatalError struct {
	Kind ErrKind
	Msg  string
}

func (e *FatalError) Error() string { return fmt.Sprintf("fieldbuilder: %s", e.Msg) }

func fatalf(kind ErrKind, format string, args ...any) *FatalError {
	return &FatalError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Options configure one Add* call: visibility and an optional pre-rendered
// label (the "format variants" of spec §4.4 step 7).
type Options struct {
	Hidden bool
	Format string // if non-empty, used verbatim as the rendered representation
}

// Option mutates Options.
type Option func(*Options)

// Hidden marks the created field invisible: it still contributes to the
// interesting-field index (spec §4.5, SPEC_FULL §11) but is excluded from
// rendered output.
func Hidden() Option { return func(o *Options) { o.Hidden = true } }

// WithFormat sets the FI's cached representation directly, bounded to
// dtree.ITEMLabelLength, instead of leaving it for pkg/label to fill lazily.
func WithFormat(format string, args ...any) Option {
	return func(o *Options) { o.Format = fmt.Sprintf(format, args...) }
}

func applyOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// resolveHFI fetches the HFI for handle and asserts its type is a member of
// wantTypes (step 1 of spec §4.4).
func resolveHFI(reg *registrar.Registrar, handle registrar.Handle, wantTypes ...ftype.FieldType) (*registrar.HeaderFieldInfo, error) {
	hfi, ok := reg.GetNth(handle)
	if !ok {
		return nil, fatalf(ErrKindUnknownHandle, "handle %d is not registered", handle)
	}
	for _, want := range wantTypes {
		if hfi.Type == want {
			return hfi, nil
		}
	}
	return nil, fatalf(ErrKindWrongType, "field %q is %s, not one of %v", hfi.Abbrev, hfi.Type, wantTypes)
}

// resolveLength implements spec §4.4 step 2.
func resolveLength(t ftype.FieldType, buf tvb.Buffer, start, length int) (int, error) {
	if length == -1 {
		if !t.AllowsNegativeOneLength() {
			return 0, fatalf(ErrKindBadLength, "length -1 not permitted for %s", t)
		}
		if t == ftype.StringZ {
			return -1, nil
		}
		rem := buf.Length() - start
		if rem < 0 {
			rem = 0
		}
		return rem, nil
	}
	if w, ok := t.FixedWidth(); ok && length != w {
		return 0, fatalf(ErrKindBadLength, "length %d does not match fixed width %d for %s", length, w, t)
	}
	return length, nil
}

// newFI builds an unlinked FieldInfo per spec §4.4 step 3. The caller must
// finish projecting a Value into it and only then commit it via
// tree.AppendChild.
func newFI(tree *dtree.Tree, buf tvb.Buffer, handle registrar.Handle, start, length int, opts Options) *dtree.FieldInfo {
	fi := &dtree.FieldInfo{
		HFI:      handle,
		Start:    start + buf.RawOffset(),
		Length:   length,
		TreeType: dtree.NoChildren,
		Visible:  tree.Data.Visible && !opts.Hidden,
		DSTvb:    buf.DataSource(),
	}
	if opts.Hidden {
		fi.Visible = false
	}
	if opts.Format != "" {
		fi.Representation = truncateLabel(opts.Format)
	}
	return fi
}

func truncateLabel(s string) string {
	if len(s) < dtree.ITEMLabelLength {
		return s
	}
	// Truncate on a rune boundary so the bounded buffer never splits a
	// multi-byte UTF-8 sequence (spec §3 "Bounded label buffers").
	b := []byte(s)[:dtree.ITEMLabelLength-1]
	for len(b) > 0 && !isRuneStart(b[len(b)-1]) {
		b = b[:len(b)-1]
	}
	return string(b)
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
