package label

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/ftype"
	"github.com/pktdissect/pktdissect/pkg/registrar"
)

// numericFormatters maps a DisplayBase to the printf-style verb used for
// the bare unsigned numeric value, mirroring the source's lookup-table
// idiom for base selection (spec §4.6, SPEC_FULL §11 "numeric formatter
// table"). The digit count is passed as the verb's width argument. BaseDec
// is handled separately since %d/%u need no prefix, and signed values do
// not use this table.
var numericFormatters = map[ftype.DisplayBase]string{
	ftype.BaseHex: "0x%0*x",
	ftype.BaseOct: "0%0*o",
}

func renderInteger(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) string {
	var raw uint64
	var signedVal int64
	signed := fi.Value.Type().IsSigned()
	if signed {
		signedVal, _ = fi.Value.GetInt()
	} else {
		raw, _ = fi.Value.GetUint()
	}

	number := formatBareNumber(raw, signedVal, signed, hfi.Display, fi.Length)
	prefix := ""
	if hfi.Bitmask != 0 {
		// The stored value is already shifted down to bit 0 (spec §4.4); shift
		// it back up to the mask's original bit position so the diagram lines
		// up with the container's actual bits.
		stored := raw
		if signed {
			stored = uint64(signedVal)
		}
		prefix = BitDiagram(fi.Length*8, hfi.Bitmask, stored<<hfi.Bitshift)
	}

	if mapped, ok := lookupValueMap(raw, hfi); ok && !signed {
		return fmt.Sprintf("%s%s: %s (%s)", prefix, hfi.Name, mapped, number)
	}
	return fmt.Sprintf("%s%s: %s", prefix, hfi.Name, number)
}

func lookupValueMap(raw uint64, hfi *registrar.HeaderFieldInfo) (string, bool) {
	if hfi.ValueMap == nil {
		return "", false
	}
	s, ok := hfi.ValueMap[raw]
	if !ok {
		return "Unknown", true
	}
	return s, true
}

// formatBareNumber formats an integer field's bare number for its display
// base. 64-bit fields go through fill_label_uint64/fill_label_int64's own
// u64toh path in the source rather than the generic per-byte-width hex
// verb: BASE_HEX on a 64-bit field is unprefixed, zero-padded to 16 digits,
// with no "0x". Signed values of other widths are always rendered in
// decimal, whatever the display base.
func formatBareNumber(raw uint64, signedVal int64, signed bool, base ftype.DisplayBase, byteWidth int) string {
	if byteWidth == 8 && base == ftype.BaseHex {
		bits := raw
		if signed {
			bits = uint64(signedVal)
		}
		return fmt.Sprintf("%016x", bits)
	}
	if signed {
		return strconv.FormatInt(signedVal, 10)
	}
	verb, ok := numericFormatters[base]
	if !ok {
		return strconv.FormatUint(raw, 10)
	}
	digits := byteWidth * 2
	if digits == 0 {
		digits = 2
	}
	return fmt.Sprintf(verb, digits, raw)
}

// BitDiagram renders the fixed-width binary diagram a masked field is
// traditionally prefixed with: one character per bit of the container
// (most significant first), '.' for bits outside mask, the actual bit value
// for bits inside it, grouped into nibbles, e.g. "0101 .... = ".
func BitDiagram(widthBits int, mask, value uint64) string {
	if widthBits <= 0 || widthBits > 64 {
		return ""
	}
	var b strings.Builder
	for i := widthBits - 1; i >= 0; i-- {
		bit := uint64(1) << uint(i)
		switch {
		case mask&bit == 0:
			b.WriteByte('.')
		case value&bit != 0:
			b.WriteByte('1')
		default:
			b.WriteByte('0')
		}
		if i%4 == 0 && i != 0 {
			b.WriteByte(' ')
		}
	}
	b.WriteString(" = ")
	return b.String()
}
