// Package acceptance exercises the registrar, tvb, dtree, fieldbuilder,
// and label packages together against the Foo Protocol demo dissector,
// the way a caller assembling the whole pipeline would.
package acceptance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pktdissect/pktdissect/internal/demoproto"
	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

// buildFooMessage returns a well-formed Foo Protocol message:
// flags/version byte, big-endian 16-bit ID, IPv4 address, a
// NUL-terminated annotation, and a little-endian 64-bit cookie.
func buildFooMessage() []byte {
	return []byte{
		0x5A,                   // flags=0x5, ver=0xA
		0x01, 0x2C,             // id = 300
		192, 168, 0, 1,         // addr
		'h', 'i', 0x00,         // text = "hi"
		1, 2, 3, 4, 5, 6, 7, 8, // u64 = 0x0807060504030201
	}
}

// newFooRegistrar registers the Foo Protocol and returns the sealed
// registrar along with its handles.
func newFooRegistrar(t *testing.T) (*registrar.Registrar, demoproto.Handles) {
	t.Helper()

	var h demoproto.Handles
	r := registrar.Init("", func(r *registrar.Registrar) {
		h = demoproto.Register(r)
	}, nil)
	return r, h
}

// dissectFoo runs the demo dissector over raw and fails the test fatally
// on any bounds fault, since the acceptance scenarios are all built from
// well-formed messages.
func dissectFoo(t *testing.T, r *registrar.Registrar, h demoproto.Handles, raw []byte) *dtree.Tree {
	t.Helper()

	buf := tvb.New(raw)
	tree, err := demoproto.Dissect(r, h, buf)
	require.NoError(t, err, "dissect Foo Protocol message")
	return tree
}

// childByHandle returns the first child of root whose FI.HFI matches
// handle, failing the test if none is found.
func childByHandle(t *testing.T, root *dtree.Node, handle registrar.Handle) *dtree.Node {
	t.Helper()

	for _, child := range root.Children {
		if child.FI.HFI == handle {
			return child
		}
	}
	require.Failf(t, "field not found", "no child with handle %d under %d children", handle, len(root.Children))
	return nil
}
