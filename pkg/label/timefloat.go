package label

import (
	"fmt"

	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/registrar"
)

func renderAbsTime(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) string {
	abs, _, _ := fi.Value.GetTime()
	return fmt.Sprintf("%s: %s", hfi.Name, abs.UTC().Format("Jan 2, 2006 15:04:05.000000000 UTC"))
}

func renderRelTime(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) string {
	_, rel, _ := fi.Value.GetTime()
	return fmt.Sprintf("%s: %s seconds", hfi.Name, formatSeconds(rel.Seconds()))
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.9f", s)
}

func renderFloating(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) string {
	f, _ := fi.Value.GetFloating()
	return fmt.Sprintf("%s: %g", hfi.Name, f)
}
