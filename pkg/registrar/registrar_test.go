package registrar

import (
	"strings"
	"testing"

	"github.com/pktdissect/pktdissect/pkg/ftype"
)

func TestRegisterProtocolCollision(t *testing.T) {
	r := New()
	if _, err := r.RegisterProtocol("Foo", "FOO", "foo"); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := r.RegisterProtocol("Bar", "FOO", "bar"); err == nil {
		t.Fatalf("expected short-name collision error")
	}
}

func TestRegisterFieldArrayDoubleRegistration(t *testing.T) {
	r := New()
	proto, _ := r.RegisterProtocol("Foo", "FOO", "foo")
	var flags Handle = 5 // not InvalidHandle: simulates caller forgetting to reset
	err := r.RegisterFieldArray(proto, []FieldRegistration{
		{Name: "Flags", Abbrev: "foo.flags", Type: ftype.Uint8, Display: ftype.BaseHex, Out: &flags},
	})
	if err == nil {
		t.Fatalf("expected double-registration error")
	}
	var fatal *FatalError
	if !asFatal(err, &fatal) || fatal.Kind != ErrKindDoubleRegister {
		t.Fatalf("wrong error kind: %v", err)
	}
}

func TestHandleStability(t *testing.T) {
	r := New()
	proto, _ := r.RegisterProtocol("Foo", "FOO", "foo")
	var a, b Handle = InvalidHandle, InvalidHandle
	if err := r.RegisterFieldArray(proto, []FieldRegistration{
		{Name: "A", Abbrev: "foo.a", Type: ftype.Uint8, Display: ftype.BaseDec, Out: &a},
		{Name: "B", Abbrev: "foo.b", Type: ftype.Uint8, Display: ftype.BaseDec, Out: &b},
	}); err != nil {
		t.Fatal(err)
	}
	for h := Handle(0); int(h) < len(r.hfis); h++ {
		hfi, ok := r.GetNth(h)
		if !ok || hfi.ID != h {
			t.Fatalf("GetNth(%d).ID = %v, want %v", h, hfi, h)
		}
	}
}

func TestAbbreviationChainHeadOrdering(t *testing.T) {
	r := New()
	proto, _ := r.RegisterProtocol("Foo", "FOO", "foo")
	var flags, ver, extra Handle = InvalidHandle, InvalidHandle, InvalidHandle
	if err := r.RegisterFieldArray(proto, []FieldRegistration{
		{Name: "Flags", Abbrev: "foo.bits", Type: ftype.Uint8, Display: ftype.BaseHex, Bitmask: 0x0F, Out: &flags},
		{Name: "Ver", Abbrev: "foo.bits", Type: ftype.Uint8, Display: ftype.BaseHex, Bitmask: 0xF0, Out: &ver},
		{Name: "Extra", Abbrev: "foo.bits", Type: ftype.Uint8, Display: ftype.BaseHex, Out: &extra},
	}); err != nil {
		t.Fatal(err)
	}

	head, ok := r.GetByName("foo.bits")
	if !ok {
		t.Fatal("foo.bits not indexed")
	}
	if head.ID != extra {
		t.Fatalf("chain head = %v, want most-recently-registered %v", head.ID, extra)
	}
	if head.SameNamePrev != InvalidHandle {
		t.Fatalf("chain head has non-nil SameNamePrev")
	}

	var order []Handle
	for cur := head; ; {
		if cur.SameNameNext == InvalidHandle {
			break
		}
		order = append(order, cur.SameNameNext)
		cur, _ = r.GetNth(cur.SameNameNext)
	}
	want := []Handle{ver, flags}
	if len(order) != len(want) || order[0] != want[0] || order[1] != want[1] {
		t.Fatalf("chain order = %v, want %v", order, want)
	}
}

func TestBitshiftDerivation(t *testing.T) {
	r := New()
	proto, _ := r.RegisterProtocol("Foo", "FOO", "foo")
	var flags, ver Handle = InvalidHandle, InvalidHandle
	if err := r.RegisterFieldArray(proto, []FieldRegistration{
		{Name: "Flags", Abbrev: "foo.flags", Type: ftype.Uint8, Display: ftype.BaseHex, Bitmask: 0x0F, Out: &flags},
		{Name: "Ver", Abbrev: "foo.ver", Type: ftype.Uint8, Display: ftype.BaseHex, Bitmask: 0xF0, Out: &ver},
	}); err != nil {
		t.Fatal(err)
	}
	fhfi, _ := r.GetNth(flags)
	vhfi, _ := r.GetNth(ver)
	if fhfi.Bitshift != 0 {
		t.Errorf("flags bitshift = %d, want 0", fhfi.Bitshift)
	}
	if vhfi.Bitshift != 4 {
		t.Errorf("ver bitshift = %d, want 4", vhfi.Bitshift)
	}
}

func TestValidationRejectsBadCombinations(t *testing.T) {
	r := New()
	proto, _ := r.RegisterProtocol("Foo", "FOO", "foo")

	cases := []struct {
		name string
		reg  FieldRegistration
	}{
		{"bitmask on string", FieldRegistration{Name: "S", Abbrev: "foo.s", Type: ftype.String, Bitmask: 1}},
		{"frame num with bitmask", FieldRegistration{Name: "N", Abbrev: "foo.n", Type: ftype.FrameNum, Bitmask: 1}},
		{"integer missing base", FieldRegistration{Name: "U", Abbrev: "foo.u", Type: ftype.Uint16}},
		{"value map on bytes", FieldRegistration{Name: "B", Abbrev: "foo.b", Type: ftype.Bytes, ValueMap: map[uint64]string{1: "x"}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var out Handle = InvalidHandle
			c.reg.Out = &out
			if err := r.RegisterFieldArray(proto, []FieldRegistration{c.reg}); err == nil {
				t.Fatalf("expected validation error for %s", c.name)
			}
		})
	}
}

func TestDumpsSkipEmptyAndNonHeadHFIs(t *testing.T) {
	r := Init("", func(r *Registrar) {
		proto, _ := r.RegisterProtocol("Foo", "FOO", "foo")
		var a, b Handle = InvalidHandle, InvalidHandle
		_ = r.RegisterFieldArray(proto, []FieldRegistration{
			{Name: "A", Abbrev: "foo.a", Type: ftype.Uint8, Display: ftype.BaseDec, Out: &a},
			{Name: "B", Abbrev: "foo.a", Type: ftype.Uint8, Display: ftype.BaseDec, Out: &b},
		})
	}, nil)

	var sb strings.Builder
	if err := r.DumpFields(&sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	if strings.Count(out, "foo.a") != 1 {
		t.Fatalf("expected exactly one foo.a line (chain head only), got:\n%s", out)
	}
	if strings.Contains(out, "\t\t") {
		t.Fatalf("sentinel text-only HFI leaked into dump:\n%s", out)
	}
}

func asFatal(err error, out **FatalError) bool {
	fe, ok := err.(*FatalError)
	if ok {
		*out = fe
	}
	return ok
}
