// Package label renders a built FieldInfo into the human-readable string
// every tree view and dfilter evaluator shows (spec §4.6, "fill_label").
// Numeric, address, string, and time rendering are all grounded on the
// registrar's declared Display/ValueMap/Bitmask metadata for the field;
// label rendering never re-reads buffer bytes. Only the frame-bytes fallback
// of ConstructDFilterString reads from a buffer.
package label

import (
	"fmt"

	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/ftype"
	"github.com/pktdissect/pktdissect/pkg/registrar"
)

// Fill computes fi's rendered representation from hfi's display metadata
// and fi's decoded Value, bounded to dtree.ITEMLabelLength, and stores it in
// fi.Representation. Fields built with fieldbuilder.WithFormat already
// carry a representation; Fill always recomputes and overwrites it, so
// callers that want to keep a caller-supplied label should not call Fill.
func Fill(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) {
	fi.Representation = truncate(render(fi, hfi))
}

func render(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) string {
	switch hfi.Type {
	case ftype.None:
		return hfi.Name

	case ftype.Protocol:
		return hfi.Name

	case ftype.Bool:
		return renderBool(fi, hfi)

	case ftype.Uint8, ftype.Uint16, ftype.Uint24, ftype.Uint32, ftype.Uint64,
		ftype.Int8, ftype.Int16, ftype.Int24, ftype.Int32, ftype.Int64, ftype.FrameNum:
		return renderInteger(fi, hfi)

	case ftype.IPv4:
		return renderIPv4(fi, hfi)
	case ftype.IPv6:
		return renderIPv6(fi, hfi)
	case ftype.Ether:
		return renderEther(fi, hfi)
	case ftype.IpxNet:
		return renderIpxNet(fi, hfi)

	case ftype.String, ftype.StringZ, ftype.UintString:
		return renderString(fi, hfi)

	case ftype.Bytes, ftype.UintBytes:
		return renderBytes(fi, hfi)

	case ftype.AbsTime:
		return renderAbsTime(fi, hfi)
	case ftype.RelTime:
		return renderRelTime(fi, hfi)

	case ftype.Float, ftype.Double:
		return renderFloating(fi, hfi)

	default:
		return fmt.Sprintf("%s: <unrenderable %s>", hfi.Name, hfi.Type)
	}
}

func truncate(s string) string {
	if len(s) < dtree.ITEMLabelLength {
		return s
	}
	b := []byte(s)[:dtree.ITEMLabelLength-1]
	for len(b) > 0 && b[len(b)-1]&0xC0 == 0x80 {
		b = b[:len(b)-1]
	}
	return string(b)
}

func renderBool(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) string {
	n, _ := fi.Value.GetUint()
	label := boolLabel(n != 0, hfi)
	if hfi.Bitmask != 0 {
		return fmt.Sprintf("%s%s: %s", BitDiagram(fi.Length*8, hfi.Bitmask, n<<hfi.Bitshift), hfi.Name, label)
	}
	return fmt.Sprintf("%s: %s", hfi.Name, label)
}

func boolLabel(v bool, hfi *registrar.HeaderFieldInfo) string {
	if !hfi.HasBoolMap {
		if v {
			return "True"
		}
		return "False"
	}
	if v {
		return hfi.TrueString
	}
	return hfi.FalseString
}
