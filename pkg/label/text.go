package label

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/registrar"
)

// maxInlineBytes bounds how many bytes of an FT_BYTES/FT_UINT_BYTES value
// are rendered before falling back to a truncated-count note, mirroring the
// source's MaxValueBytes display cap.
const maxInlineBytes = 32

func renderString(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) string {
	s, _ := fi.Value.GetString()
	return fmt.Sprintf("%s: %s", hfi.Name, displayableText(s))
}

// displayableText returns s unchanged if it is valid UTF-8, or decodes it
// as Windows-1252 otherwise so that arbitrary captured bytes always render
// as well-formed text instead of the UTF-8 replacement character (spec §9
// "non-UTF-8 field text").
func displayableText(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	decoded, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return decoded
}

func renderBytes(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) string {
	data, _ := fi.Value.GetBytes()
	if len(data) == 0 {
		return fmt.Sprintf("%s: <empty>", hfi.Name)
	}
	shown := data
	truncated := ""
	if len(shown) > maxInlineBytes {
		shown = shown[:maxInlineBytes]
		truncated = fmt.Sprintf(" (truncated, %d total bytes)", len(data))
	}
	return fmt.Sprintf("%s: %X%s", hfi.Name, shown, truncated)
}
