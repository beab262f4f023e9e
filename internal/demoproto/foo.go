// Package demoproto is a worked-example dissector for the "Foo Protocol"
// used to exercise the registrar, tvb, dtree, fieldbuilder, and label
// packages end to end (spec §8's concrete scenarios): a flags/version
// bit-sliced byte, a big-endian 16-bit ID, an IPv4 address, a
// NUL-terminated string, and a little-endian 64-bit field.
package demoproto

import (
	"github.com/pktdissect/pktdissect/internal/ibuf"
	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/fieldbuilder"
	"github.com/pktdissect/pktdissect/pkg/ftype"
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

// Handles collects the handles Register assigns, so a dissector written
// against this package never has to re-resolve fields by abbreviation on
// the hot path.
type Handles struct {
	Proto registrar.Handle

	Flags registrar.Handle
	Ver   registrar.Handle
	ID    registrar.Handle
	Addr  registrar.Handle
	Text  registrar.Handle
	U64   registrar.Handle
}

var subtreeFoo int

// Register installs the Foo Protocol and its fields into r (the
// registerAll phase of registrar.Init).
func Register(r *registrar.Registrar) Handles {
	proto, err := r.RegisterProtocol("Foo Protocol", "FOO", "foo")
	if err != nil {
		panic(err)
	}

	h := Handles{Proto: proto}
	h.Flags, h.Ver, h.ID, h.Addr, h.Text, h.U64 =
		registrar.InvalidHandle, registrar.InvalidHandle, registrar.InvalidHandle,
		registrar.InvalidHandle, registrar.InvalidHandle, registrar.InvalidHandle

	err = r.RegisterFieldArray(proto, []registrar.FieldRegistration{
		{
			Name: "Flags", Abbrev: "foo.flags", Type: ftype.Uint8, Display: ftype.BaseHex,
			Bitmask: 0xF0, Blurb: "High nibble of the first octet", Out: &h.Flags,
		},
		{
			Name: "Version", Abbrev: "foo.ver", Type: ftype.Uint8, Display: ftype.BaseDec,
			Bitmask: 0x0F, Blurb: "Low nibble of the first octet", Out: &h.Ver,
		},
		{
			Name: "ID", Abbrev: "foo.id", Type: ftype.Uint16, Display: ftype.BaseDec,
			Blurb: "Sequence identifier", Out: &h.ID,
		},
		{
			Name: "Address", Abbrev: "foo.addr", Type: ftype.IPv4,
			Blurb: "Originating address", Out: &h.Addr,
		},
		{
			Name: "Text", Abbrev: "foo.text", Type: ftype.StringZ,
			Blurb: "Free-form annotation", Out: &h.Text,
		},
		{
			Name: "U64", Abbrev: "foo.u64", Type: ftype.Uint64, Display: ftype.BaseHex,
			Blurb: "64-bit opaque cookie", Out: &h.U64,
		},
	})
	if err != nil {
		panic(err)
	}

	r.RegisterSubtreeTypes(&subtreeFoo)
	return h
}

// Dissect builds the dissection tree for one Foo Protocol message: a
// flags/version byte, a 16-bit big-endian ID, a 4-byte IPv4 address, a
// NUL-terminated annotation, and an 8-byte little-endian cookie, in that
// wire order.
func Dissect(r *registrar.Registrar, h Handles, buf tvb.Buffer) (*dtree.Tree, error) {
	tree := dtree.New(true)

	root, err := fieldbuilder.AddProtocol(tree, tree.Root, r, buf, h.Proto, subtreeFoo)
	if err != nil {
		return nil, err
	}

	offset := 0
	if _, err := fieldbuilder.AddUint(tree, root, r, buf, h.Flags, offset, 1, ibuf.BigEndian); err != nil {
		return nil, err
	}
	if _, err := fieldbuilder.AddUint(tree, root, r, buf, h.Ver, offset, 1, ibuf.BigEndian); err != nil {
		return nil, err
	}
	offset++

	if _, err := fieldbuilder.AddUint(tree, root, r, buf, h.ID, offset, 2, ibuf.BigEndian); err != nil {
		return nil, err
	}
	offset += 2

	if _, err := fieldbuilder.AddIPv4(tree, root, r, buf, h.Addr, offset); err != nil {
		return nil, err
	}
	offset += 4

	textNode, err := fieldbuilder.AddStringZ(tree, root, r, buf, h.Text, offset, -1)
	if err != nil {
		return nil, err
	}
	offset += textNode.FI.Length

	if _, err := fieldbuilder.AddUint64(tree, root, r, buf, h.U64, offset, 8, ibuf.LittleEndian); err != nil {
		return nil, err
	}

	return tree, nil
}
