package fieldbuilder

import (
	"testing"
	"time"

	"github.com/pktdissect/pktdissect/internal/ibuf"
	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/ftype"
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

// setup registers the foo.flags/foo.ver bitmask pair, foo.id, foo.addr,
// foo.text, and foo.u64 fields used throughout this file, mirroring the
// worked example of a bit-sliced byte, a big-endian 16-bit field, an IPv4
// address, a NUL-terminated string, and a little-endian 64-bit field.
func setup(t *testing.T) (*registrar.Registrar, registrar.Handle, map[string]registrar.Handle) {
	t.Helper()
	r := registrar.New()
	proto, err := r.RegisterProtocol("Foo Protocol", "FOO", "foo")
	if err != nil {
		t.Fatal(err)
	}

	var flags, ver, id, addr, text, u64 registrar.Handle
	flags, ver = registrar.InvalidHandle, registrar.InvalidHandle
	id, addr, text, u64 = registrar.InvalidHandle, registrar.InvalidHandle, registrar.InvalidHandle, registrar.InvalidHandle

	err = r.RegisterFieldArray(proto, []registrar.FieldRegistration{
		{Name: "Flags", Abbrev: "foo.flags", Type: ftype.Uint8, Display: ftype.BaseHex, Bitmask: 0xF0, Out: &flags},
		{Name: "Version", Abbrev: "foo.ver", Type: ftype.Uint8, Display: ftype.BaseDec, Bitmask: 0x0F, Out: &ver},
		{Name: "ID", Abbrev: "foo.id", Type: ftype.Uint16, Display: ftype.BaseDec, Out: &id},
		{Name: "Address", Abbrev: "foo.addr", Type: ftype.IPv4, Out: &addr},
		{Name: "Text", Abbrev: "foo.text", Type: ftype.StringZ, Out: &text},
		{Name: "U64", Abbrev: "foo.u64", Type: ftype.Uint64, Display: ftype.BaseHex, Out: &u64},
	})
	if err != nil {
		t.Fatal(err)
	}

	return r, proto, map[string]registrar.Handle{
		"flags": flags, "ver": ver, "id": id, "addr": addr, "text": text, "u64": u64,
	}
}

func TestAddUintAppliesBitmaskAndShift(t *testing.T) {
	r, _, h := setup(t)
	buf := tvb.New([]byte{0x5A})
	tree := dtree.New(true)

	flagsNode, err := AddUint(tree, tree.Root, r, buf, h["flags"], 0, 1, ibuf.BigEndian)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := flagsNode.FI.Value.GetUint()
	if n != 0x5 {
		t.Fatalf("flags = %#x, want 0x5", n)
	}

	verNode, err := AddUint(tree, tree.Root, r, buf, h["ver"], 0, 1, ibuf.BigEndian)
	if err != nil {
		t.Fatal(err)
	}
	n, _ = verNode.FI.Value.GetUint()
	if n != 0xA {
		t.Fatalf("ver = %#x, want 0xA", n)
	}
}

func TestAddUintBigEndian16(t *testing.T) {
	r, _, h := setup(t)
	buf := tvb.New([]byte{0x01, 0x2C})
	tree := dtree.New(true)

	node, err := AddUint(tree, tree.Root, r, buf, h["id"], 0, 2, ibuf.BigEndian)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := node.FI.Value.GetUint()
	if n != 300 {
		t.Fatalf("id = %d, want 300", n)
	}
}

func TestAddIPv4(t *testing.T) {
	r, _, h := setup(t)
	buf := tvb.New([]byte{192, 168, 0, 1})
	tree := dtree.New(true)

	node, err := AddIPv4(tree, tree.Root, r, buf, h["addr"], 0)
	if err != nil {
		t.Fatal(err)
	}
	addr, ok := node.FI.Value.GetIPv4()
	if !ok || addr.String() != "192.168.0.1" {
		t.Fatalf("addr = %v, ok=%v", addr, ok)
	}
}

func TestAddStringZScansForTerminator(t *testing.T) {
	r, _, h := setup(t)
	buf := tvb.New([]byte("hi\x00rest"))
	tree := dtree.New(true)

	node, err := AddStringZ(tree, tree.Root, r, buf, h["text"], 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	s, _ := node.FI.Value.GetString()
	if s != "hi" {
		t.Fatalf("text = %q, want %q", s, "hi")
	}
	if node.FI.Length != 3 {
		t.Fatalf("length = %d, want 3 (includes terminator)", node.FI.Length)
	}
}

func TestAddStringZMissingTerminatorFaults(t *testing.T) {
	r, _, h := setup(t)
	buf := tvb.New([]byte("nonulhere"))
	tree := dtree.New(true)

	if _, err := AddStringZ(tree, tree.Root, r, buf, h["text"], 0, -1); err == nil {
		t.Fatal("expected a bounds fault when no NUL is present")
	}
}

func TestAddUint64LittleEndianHex(t *testing.T) {
	r, _, h := setup(t)
	buf := tvb.New([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})
	tree := dtree.New(true)

	node, err := AddUint64(tree, tree.Root, r, buf, h["u64"], 0, 8, ibuf.LittleEndian)
	if err != nil {
		t.Fatal(err)
	}
	n, _ := node.FI.Value.GetUint()
	if n != 0x0807060504030201 {
		t.Fatalf("u64 = %#x, want 0x0807060504030201", n)
	}
}

func TestAddUintWrongTypeIsFatal(t *testing.T) {
	r, _, h := setup(t)
	buf := tvb.New([]byte{0x01})
	tree := dtree.New(true)

	_, err := AddUint(tree, tree.Root, r, buf, h["addr"], 0, 1, ibuf.BigEndian)
	if err == nil {
		t.Fatal("expected FatalError for type mismatch")
	}
	if _, ok := err.(*FatalError); !ok {
		t.Fatalf("expected *FatalError, got %T", err)
	}
}

func TestAddUintBoundsFaultDoesNotCommit(t *testing.T) {
	r, _, h := setup(t)
	buf := tvb.New([]byte{0x01})
	tree := dtree.New(true)

	_, err := AddUint(tree, tree.Root, r, buf, h["id"], 0, 2, ibuf.BigEndian)
	if err == nil {
		t.Fatal("expected bounds fault reading past a 1-byte buffer")
	}
	if len(tree.Root.Children) != 0 {
		t.Fatal("a failed read must not be linked into the tree")
	}
}

func TestAddProtocolIsExpandable(t *testing.T) {
	r, proto, _ := setup(t)
	buf := tvb.New([]byte{0x5A, 0x01, 0x2C})
	tree := dtree.New(true)

	node, err := AddProtocol(tree, tree.Root, r, buf, proto, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tree.AppendChild(node, &dtree.FieldInfo{HFI: proto}); err != nil {
		t.Fatalf("expected protocol node to be expandable: %v", err)
	}
}

func TestAddNoneUsesSentinelHandle(t *testing.T) {
	r := registrar.Init("", nil, nil)
	buf := tvb.New([]byte{})
	tree := dtree.New(true)

	node, err := AddNone(tree, tree.Root, r, buf, 0, 0, WithFormat("Group header"))
	if err != nil {
		t.Fatal(err)
	}
	if node.FI.HFI == registrar.InvalidHandle || node.FI.HFI != r.TextOnlyHandle() {
		t.Fatalf("HFI = %d, want the sentinel text-only handle %d", node.FI.HFI, r.TextOnlyHandle())
	}
	if node.FI.Representation != "Group header" {
		t.Fatalf("representation = %q", node.FI.Representation)
	}
}

func TestAppendStringClearsCachedRepresentation(t *testing.T) {
	r, _, h := setup(t)
	buf := tvb.New([]byte("hi\x00"))
	tree := dtree.New(true)

	node, err := AddStringZ(tree, tree.Root, r, buf, h["text"], 0, -1, WithFormat("Text: hi"))
	if err != nil {
		t.Fatal(err)
	}
	if err := AppendString(node, " there"); err != nil {
		t.Fatal(err)
	}
	s, _ := node.FI.Value.GetString()
	if s != "hi there" {
		t.Fatalf("text = %q", s)
	}
	if node.FI.Representation != "" {
		t.Fatal("AppendString should invalidate the cached representation")
	}
}

func TestSetEndAdjustsLength(t *testing.T) {
	r, _, h := setup(t)
	buf := tvb.New([]byte{0x01, 0x2C, 0xFF, 0xFF})
	tree := dtree.New(true)

	node, err := AddUint(tree, tree.Root, r, buf, h["id"], 0, 2, ibuf.BigEndian)
	if err != nil {
		t.Fatal(err)
	}
	SetEnd(node, buf, 4)
	if node.FI.Length != 4 {
		t.Fatalf("length = %d, want 4", node.FI.Length)
	}
}

func TestAddAbsTimeIsCallerSupplied(t *testing.T) {
	r := registrar.New()
	proto, _ := r.RegisterProtocol("Foo Protocol", "FOO", "foo")
	var ts registrar.Handle = registrar.InvalidHandle
	err := r.RegisterFieldArray(proto, []registrar.FieldRegistration{
		{Name: "Timestamp", Abbrev: "foo.ts", Type: ftype.AbsTime, Out: &ts},
	})
	if err != nil {
		t.Fatal(err)
	}

	buf := tvb.New(make([]byte, 8))
	tree := dtree.New(true)
	want := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	node, err := AddAbsTime(tree, tree.Root, r, buf, ts, 0, 8, want)
	if err != nil {
		t.Fatal(err)
	}
	abs, _, ok := node.FI.Value.GetTime()
	if !ok || !abs.Equal(want) {
		t.Fatalf("abs time = %v, want %v", abs, want)
	}
}
