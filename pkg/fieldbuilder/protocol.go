package fieldbuilder

import (
	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/ftype"
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

// AddProtocol builds the top-level FT_PROTOCOL field every dissection tree
// is rooted with. It is always made expandable: callers attach the
// protocol's own fields as children of the returned node. The field always
// starts at offset 0 of buf and spans its whole length, and its Value
// refers to the whole buffer; there is no start argument.
func AddProtocol(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, subtreeType int, opts ...Option) (*dtree.Node, error) {
	if _, err := resolveHFI(reg, handle, ftype.Protocol); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, 0, buf.Length(), o)
	fi.Value.SetProtocolSegment(true)

	node, err := tree.AppendChild(parent, fi)
	if err != nil {
		return nil, err
	}
	dtree.MakeExpandable(node, subtreeType)
	return node, nil
}

// AddNone builds a valueless FT_NONE node: a label-only tree entry
// used for synthetic grouping headers that have no corresponding bytes
// (spec §4.4 "text-only nodes"). Its representation must be supplied via
// WithFormat; fill_label has nothing to render otherwise.
func AddNone(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, start, length int, opts ...Option) (*dtree.Node, error) {
	handle := reg.TextOnlyHandle()
	fi := newFI(tree, buf, handle, start, length, applyOptions(opts))
	fi.Value.SetNone()
	return tree.AppendChild(parent, fi)
}
