// Package dtree implements the rooted, ordered dissection tree: the n-ary
// tree of typed field nodes a dissector builds up while decoding one
// packet, along with the per-tree "interesting field" index (spec §3, §4.5).
//
// A Tree is built start-to-finish on one goroutine during one dissection
// and is never mutated concurrently (spec §5); there is no internal
// locking.
package dtree

import (
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
	"github.com/pktdissect/pktdissect/pkg/value"
)

// NoChildren is the TreeType of a FieldInfo that has not been marked
// expandable via MakeExpandable; children cannot be appended under it.
const NoChildren = -1

// ITEMLabelLength bounds every rendered label (spec §3, "representation";
// spec §9 "Bounded label buffers"). Chosen to match the source's typical
// configuration.
const ITEMLabelLength = 240

// FieldInfo is one decoded field instance: a node's payload (spec §3 "FI").
type FieldInfo struct {
	HFI    registrar.Handle
	Start  int
	Length int

	TreeType int // NoChildren, or a subtree-type index from RegisterSubtreeTypes
	Visible  bool

	Value value.Value

	// Representation caches a rendered label, bounded to ITEMLabelLength by
	// whatever filled it (pkg/label). Empty until fill_label runs.
	Representation string

	DSTvb tvb.SourceID
}

// Node is one element of the tree: either the root (FI == nil) or a built
// field (FI != nil).
type Node struct {
	FI       *FieldInfo
	Parent   *Node
	Children []*Node
}

// TreeData is the side data the root of a Tree carries: its visibility
// default and the interesting-field index (spec §3 "Tree").
type TreeData struct {
	Visible     bool
	Interesting map[registrar.Handle][]*Node
}

// Tree is a rooted ordered tree of FieldInfo nodes built during one
// dissection (spec §3 "Tree", §4.5).
type Tree struct {
	Root *Node
	Data *TreeData

	destroyed bool
}

// New creates an empty tree. visible sets the default rendering visibility
// every new field inherits; consumers that want output must opt in by
// passing true (spec §4.5: "visibility defaults to false").
func New(visible bool) *Tree {
	data := &TreeData{
		Visible:     visible,
		Interesting: make(map[registrar.Handle][]*Node),
	}
	return &Tree{
		Root: &Node{},
		Data: data,
	}
}

// Prime installs an empty interesting-field list under handle, so that
// subsequent appends of that handle are indexed (spec §4.5).
func (t *Tree) Prime(handle registrar.Handle) {
	if _, ok := t.Data.Interesting[handle]; !ok {
		t.Data.Interesting[handle] = nil
	}
}

// Primed reports whether handle was previously passed to Prime.
func (t *Tree) Primed(handle registrar.Handle) bool {
	_, ok := t.Data.Interesting[handle]
	return ok
}

// AppendChild appends fi as the last child of parent. parent must be t.Root
// or a node whose FI.TreeType has been set via MakeExpandable; appending
// under any other node is a dissector bug (spec §4.5).
//
// If fi.HFI is primed, the new node is also appended to its interesting
// list, in tree order (spec §8 "Interesting-field exactness").
func (t *Tree) AppendChild(parent *Node, fi *FieldInfo) (*Node, error) {
	if t.destroyed {
		return nil, fatalf(ErrKindAlreadyBuilt, "append to a destroyed tree")
	}
	if parent != t.Root && (parent.FI == nil || parent.FI.TreeType == NoChildren) {
		return nil, fatalf(ErrKindNotExpandable, "append under a non-expandable parent")
	}
	node := &Node{FI: fi, Parent: parent}
	parent.Children = append(parent.Children, node)

	if list, primed := t.Data.Interesting[fi.HFI]; primed {
		t.Data.Interesting[fi.HFI] = append(list, node)
	}
	return node, nil
}

// MakeExpandable marks node as a subtree root of the given registered
// subtree type, permitting children to be appended under it
// (item_add_subtree in the source).
func MakeExpandable(node *Node, subtreeType int) {
	node.FI.TreeType = subtreeType
}

// Interesting returns the FIs indexed under handle, in tree order, or nil
// if handle was never primed.
func (t *Tree) Interesting(handle registrar.Handle) []*FieldInfo {
	nodes, ok := t.Data.Interesting[handle]
	if !ok {
		return nil
	}
	out := make([]*FieldInfo, len(nodes))
	for i, n := range nodes {
		out[i] = n.FI
	}
	return out
}

// LookupByOffset performs a pre-order walk and returns the last visible FI
// whose [Start, Start+Length) contains offset, restricted to nodes whose
// DSTvb equals source (spec §4.5).
func LookupByOffset(root *Node, source tvb.SourceID, offset int) *FieldInfo {
	var best *FieldInfo
	var walk func(*Node)
	walk = func(n *Node) {
		if n.FI != nil && n.FI.Visible && n.FI.DSTvb == source &&
			offset >= n.FI.Start && offset < n.FI.Start+n.FI.Length {
			best = n.FI
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return best
}

// Destroy tears the tree down: it walks in-order releasing each FI's
// Representation and Value references so a long-lived interesting-map entry
// cannot keep packet-sized buffers alive after the dissection that produced
// them ends (spec §4.5 "Destruction"). Go's garbage collector reclaims the
// memory; Destroy's job is only to drop the references promptly and to
// reject further use of the tree.
func (t *Tree) Destroy() {
	if t.destroyed {
		return
	}
	var walk func(*Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			walk(c)
		}
		if n.FI != nil {
			n.FI.Representation = ""
			n.FI.Value = value.Value{}
		}
		n.Children = nil
	}
	walk(t.Root)
	t.Data.Interesting = nil
	t.destroyed = true
}
