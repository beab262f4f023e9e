package value

import (
	"strconv"

	"github.com/pktdissect/pktdissect/pkg/ftype"
)

// ReprMode selects which canonical string rendering StringRepr produces.
type ReprMode int

const (
	// ReprDisplay renders the value the way it would appear in a GUI cell.
	ReprDisplay ReprMode = iota
	// ReprDFilter renders the value as a display-filter literal, e.g. the
	// canonical textual form of an address or a bare decimal for integers.
	ReprDFilter
)

// StringRepr renders v according to mode. Every FieldType implements this;
// types with no natural string form (FT_NONE, FT_PROTOCOL) return ("", false)
// so callers fall back to the frame-bytes dfilter form (spec §4.6).
func (v *Value) StringRepr(mode ReprMode) (string, bool) {
	if v.typ == ftype.None || v.typ == ftype.Protocol {
		return "", false
	}
	if n, ok := v.GetUint(); ok {
		return strconv.FormatUint(n, 10), true
	}
	if n, ok := v.GetInt(); ok {
		return strconv.FormatInt(n, 10), true
	}
	if f, ok := v.GetFloating(); ok {
		return strconv.FormatFloat(f, 'g', -1, 64), true
	}
	if s, ok := v.GetString(); ok {
		if mode == ReprDFilter {
			return strconv.Quote(s), true
		}
		return s, true
	}
	if a, ok := v.GetIPv4(); ok {
		return a.String(), true
	}
	if a, ok := v.GetIPv6(); ok {
		return a.String(), true
	}
	if b, ok := v.GetBytes(); ok {
		return formatBytesColon(b), true
	}
	if abs, rel, ok := v.GetTime(); ok {
		if !abs.IsZero() || rel == 0 {
			return abs.Format("2006-01-02 15:04:05.000000000"), true
		}
		return rel.String(), true
	}
	return "", false
}

// StringReprLen returns len(s) for the string StringRepr(mode) would
// produce, or 0 when StringRepr produces none. It formats the value via
// StringRepr to measure it.
func (v *Value) StringReprLen(mode ReprMode) int {
	s, ok := v.StringRepr(mode)
	if !ok {
		return 0
	}
	return len(s)
}

func formatBytesColon(b []byte) string {
	out := make([]byte, 0, len(b)*3)
	const hex = "0123456789abcdef"
	for i, c := range b {
		if i > 0 {
			out = append(out, ':')
		}
		out = append(out, hex[c>>4], hex[c&0xf])
	}
	return string(out)
}
