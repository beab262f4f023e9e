package demoproto

import (
	"testing"

	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

func buildMessage() []byte {
	msg := []byte{0x5A}                   // flags=0x5, ver=0xA
	msg = append(msg, 0x01, 0x2C)          // id = 300
	msg = append(msg, 192, 168, 0, 1)      // addr = 192.168.0.1
	msg = append(msg, 'h', 'i', 0x00)      // text = "hi"
	msg = append(msg, 1, 2, 3, 4, 5, 6, 7, 8) // u64, little-endian
	return msg
}

func TestDissectFooProtocol(t *testing.T) {
	r := registrar.New()
	h := Register(r)
	buf := tvb.New(buildMessage())

	tree, err := Dissect(r, h, buf)
	if err != nil {
		t.Fatalf("Dissect: %v", err)
	}

	root := tree.Root.Children[0]
	if len(root.Children) != 6 {
		t.Fatalf("expected 6 fields under the protocol root, got %d", len(root.Children))
	}

	flags, id, addr, text, u64 := root.Children[0], root.Children[2], root.Children[3], root.Children[4], root.Children[5]

	if n, _ := flags.FI.Value.GetUint(); n != 0x5 {
		t.Fatalf("flags = %#x, want 0x5", n)
	}
	if n, _ := id.FI.Value.GetUint(); n != 300 {
		t.Fatalf("id = %d, want 300", n)
	}
	if a, ok := addr.FI.Value.GetIPv4(); !ok || a.String() != "192.168.0.1" {
		t.Fatalf("addr = %v", a)
	}
	if s, _ := text.FI.Value.GetString(); s != "hi" {
		t.Fatalf("text = %q, want %q", s, "hi")
	}
	if n, _ := u64.FI.Value.GetUint(); n != 0x0807060504030201 {
		t.Fatalf("u64 = %#x, want 0x0807060504030201", n)
	}
}

func TestDissectFooProtocolTruncatedFaults(t *testing.T) {
	r := registrar.New()
	h := Register(r)
	buf := tvb.New(buildMessage()[:5]) // cuts off mid-address

	if _, err := Dissect(r, h, buf); err == nil {
		t.Fatal("expected a bounds fault on a truncated message")
	}
}
