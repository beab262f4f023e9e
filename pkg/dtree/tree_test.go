package dtree

import (
	"testing"

	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

func TestNewTreeRootHasNoFI(t *testing.T) {
	tr := New(false)
	if tr.Root == nil {
		t.Fatal("Root should not be nil")
	}
	if tr.Root.FI != nil {
		t.Error("root should carry no FI")
	}
}

func TestAppendChildUnderNonExpandableParent(t *testing.T) {
	tr := New(true)
	leaf, err := tr.AppendChild(tr.Root, &FieldInfo{HFI: 1, TreeType: NoChildren})
	if err != nil {
		t.Fatalf("append under root: %v", err)
	}
	if _, err := tr.AppendChild(leaf, &FieldInfo{HFI: 2}); err == nil {
		t.Fatal("expected FatalError appending under non-expandable parent")
	}
}

func TestAppendChildUnderExpandableParent(t *testing.T) {
	tr := New(true)
	parent, _ := tr.AppendChild(tr.Root, &FieldInfo{HFI: 1})
	MakeExpandable(parent, 0)
	if _, err := tr.AppendChild(parent, &FieldInfo{HFI: 2}); err != nil {
		t.Fatalf("append under expandable parent: %v", err)
	}
	if len(parent.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(parent.Children))
	}
}

func TestChildOrderEqualsCallOrder(t *testing.T) {
	tr := New(true)
	var handles = []registrar.Handle{10, 20, 30}
	for _, h := range handles {
		if _, err := tr.AppendChild(tr.Root, &FieldInfo{HFI: h}); err != nil {
			t.Fatal(err)
		}
	}
	for i, c := range tr.Root.Children {
		if c.FI.HFI != handles[i] {
			t.Fatalf("child[%d].HFI = %v, want %v", i, c.FI.HFI, handles[i])
		}
	}
}

func TestInterestingFieldExactness(t *testing.T) {
	tr := New(true)
	const idField registrar.Handle = 7
	tr.Prime(idField)

	for _, v := range []uint64{1, 2, 3} {
		fi := &FieldInfo{HFI: idField}
		fi.Value.SetUint(0, v)
		if _, err := tr.AppendChild(tr.Root, fi); err != nil {
			t.Fatal(err)
		}
	}
	// a non-primed handle mixed in should not pollute the list
	if _, err := tr.AppendChild(tr.Root, &FieldInfo{HFI: 999}); err != nil {
		t.Fatal(err)
	}

	got := tr.Interesting(idField)
	if len(got) != 3 {
		t.Fatalf("interesting list length = %d, want 3", len(got))
	}
	for i, fi := range got {
		n, _ := fi.Value.GetUint()
		if n != uint64(i+1) {
			t.Fatalf("interesting[%d] = %d, want %d", i, n, i+1)
		}
	}

	if got := tr.Interesting(registrar.Handle(4242)); got != nil {
		t.Fatalf("un-primed handle should return nil, got %v", got)
	}
}

func TestLookupByOffsetReturnsLastVisibleMatch(t *testing.T) {
	tr := New(true)
	src := tvb.SourceID(1)
	outer, _ := tr.AppendChild(tr.Root, &FieldInfo{HFI: 1, Start: 0, Length: 10, Visible: true, DSTvb: src})
	MakeExpandable(outer, 0)
	inner, _ := tr.AppendChild(outer, &FieldInfo{HFI: 2, Start: 2, Length: 4, Visible: true, DSTvb: src})
	_ = inner

	fi := LookupByOffset(tr.Root, src, 3)
	if fi == nil || fi.HFI != 2 {
		t.Fatalf("expected inner field at offset 3, got %+v", fi)
	}

	// a later hidden node over the same bytes should not shadow the visible inner match
	hidden, _ := tr.AppendChild(outer, &FieldInfo{HFI: 3, Start: 2, Length: 4, Visible: false, DSTvb: src})
	_ = hidden
	fi = LookupByOffset(tr.Root, src, 3)
	if fi == nil || fi.HFI != 2 {
		t.Fatalf("hidden node should not be returned, got %+v", fi)
	}

	// wrong data source never matches
	if fi := LookupByOffset(tr.Root, tvb.SourceID(999), 3); fi != nil {
		t.Fatalf("expected no match for foreign data source, got %+v", fi)
	}
}

func TestDestroyClearsReferences(t *testing.T) {
	tr := New(true)
	fi := &FieldInfo{HFI: 1, Representation: "Name: value"}
	tr.AppendChild(tr.Root, fi)
	tr.Destroy()
	if fi.Representation != "" {
		t.Fatal("Destroy should clear cached representation")
	}
	if tr.Data.Interesting != nil {
		t.Fatal("Destroy should release the interesting map")
	}
}

func TestExpansionTable(t *testing.T) {
	tbl := NewExpansionTable(3)
	if tbl.Get(1) {
		t.Fatal("new table should start collapsed")
	}
	tbl.Set(1, true)
	if !tbl.Get(1) {
		t.Fatal("Set should persist")
	}
	if tbl.Get(10) {
		t.Fatal("out-of-range Get should report false")
	}
}
