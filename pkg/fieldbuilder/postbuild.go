package fieldbuilder

import (
	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

// AppendString concatenates suffix onto an already-built FT_STRING/
// FT_STRINGZ node's value (proto_item_append_string in the source),
// re-rendering nothing itself: pkg/label recomputes the representation the
// next time it is asked.
func AppendString(node *dtree.Node, suffix string) error {
	if err := node.FI.Value.AppendString(suffix); err != nil {
		return err
	}
	node.FI.Representation = ""
	return nil
}

// SetLen overwrites a committed node's Length, for dissectors that build a
// field before the true wire length is known (proto_item_set_len).
func SetLen(node *dtree.Node, length int) {
	node.FI.Length = length
}

// SetEnd sets a committed node's Length so that it ends at offset end
// within buf (the same frame the original Add* start argument was given
// in), clamping to zero if end falls before the field's start
// (proto_item_set_end).
func SetEnd(node *dtree.Node, buf tvb.Buffer, end int) {
	length := (end + buf.RawOffset()) - node.FI.Start
	if length < 0 {
		length = 0
	}
	node.FI.Length = length
}
