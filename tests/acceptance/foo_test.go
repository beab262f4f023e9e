package acceptance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pktdissect/pktdissect/internal/demoproto"
	"github.com/pktdissect/pktdissect/pkg/label"
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

// TestDissectAndFillFooMessage runs the demo dissector end to end and
// checks the fields, decoded values, and rendered labels for every
// field in a well-formed message.
func TestDissectAndFillFooMessage(t *testing.T) {
	r, h := newFooRegistrar(t)
	tree := dissectFoo(t, r, h, buildFooMessage())
	defer tree.Destroy()

	require.Len(t, tree.Root.Children, 1, "the Foo Protocol node")
	protoNode := tree.Root.Children[0]
	require.Len(t, protoNode.Children, 6, "flags, ver, id, addr, text, u64")

	tests := []struct {
		name      string
		handle    registrar.Handle
		wantLabel string
	}{
		{"flags", h.Flags, "0101 .... = Flags: 0x05"},
		{"version", h.Ver, ".... 1010 = Version: 10"},
		{"id", h.ID, "ID: 300"},
		{"addr", h.Addr, "Address: 192.168.0.1 (192.168.0.1)"},
		{"text", h.Text, "Text: hi"},
		{"u64", h.U64, "U64: 0807060504030201"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := childByHandle(t, protoNode, tt.handle)

			hfi, ok := r.GetNth(tt.handle)
			require.True(t, ok, "GetNth must resolve a handle Register just returned")

			label.Fill(node.FI, hfi)
			assert.Equal(t, tt.wantLabel, node.FI.Representation)
		})
	}
}

// TestDissectFooMessageTruncatedFaults checks that a message cut short
// anywhere in the middle of a field yields a bounds fault instead of a
// partially built tree.
func TestDissectFooMessageTruncatedFaults(t *testing.T) {
	full := buildFooMessage()

	tests := []struct {
		name   string
		cutAt  int
		reason string
	}{
		{"missing_u64", 12, "u64 cookie truncated"},
		{"missing_text_terminator", 9, "text has no NUL terminator"},
		{"missing_addr", 4, "address truncated"},
		{"missing_id", 2, "id truncated"},
		{"empty", 0, "no bytes at all"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, h := newFooRegistrar(t)

			buf := tvb.New(full[:tt.cutAt])
			_, err := demoproto.Dissect(r, h, buf)
			assert.Error(t, err, tt.reason)
		})
	}
}
