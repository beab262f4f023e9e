package label

import (
	"fmt"

	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
	"github.com/pktdissect/pktdissect/pkg/value"
)

// ConstructDFilterString builds the display-filter predicate a "apply as
// filter" action would generate for fi (spec §4.6, "construct_dfilter_string").
//
// For a field with an abbreviation whose value has a dfilter-mode string
// representation, this is "<abbrev> == <value>". Fields with no
// abbreviation (the FT_NONE text-only sentinel) or with no such value
// representation (FT_NONE, FT_PROTOCOL) have no predicate of their own; the
// fallback constructs a raw byte-range match against rootFrame, but only
// when fi's data source is rootFrame's data source (spec §4.6 "frame-bytes
// fallback restricted to the root frame buffer") — a field carved from a
// reassembled or decrypted sub-buffer cannot be matched this way, since
// "frame[a:b]" addresses the original captured octets.
func ConstructDFilterString(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo, rootFrame tvb.Buffer) (string, bool) {
	if hfi.Abbrev != "" {
		if repr, ok := fi.Value.StringRepr(value.ReprDFilter); ok {
			return fmt.Sprintf("%s == %s", hfi.Abbrev, repr), true
		}
	}

	if rootFrame == nil || rootFrame.DataSource() != fi.DSTvb {
		return "", false
	}
	local := fi.Start - rootFrame.RawOffset()
	raw, err := rootFrame.Memcpy(local, fi.Length)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("frame[%d:%d] == %s", fi.Start, fi.Length, formatColonHex(raw)), true
}
