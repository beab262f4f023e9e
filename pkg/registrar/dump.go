package registrar

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pktdissect/pktdissect/pkg/ftype"
)

// DumpProtocols writes one line per registered protocol in the stable,
// tab-delimited form "name\tshort\tfilter" (spec §4.7, §6). This is a
// stable external contract consumed by tooling, not a debugging aid.
func (r *Registrar) DumpProtocols(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for p := range r.Protocols() {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\n", p.LongName, p.ShortName, p.FilterName); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DumpFields writes one line per HFI: "P\tname\tabbrev" for a protocol, or
// "F\tname\tabbrev\ttypeName\tparentAbbrev\tblurb" for a field. HFIs with
// empty name or abbrev are skipped, as is every non-head member of a
// same-abbreviation chain (spec §4.7).
func (r *Registrar) DumpFields(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, hfi := range r.hfis {
		if hfi.Name == "" || hfi.Abbrev == "" {
			continue
		}
		if !r.isChainHead(hfi) {
			continue
		}
		if hfi.Parent == InvalidHandle {
			if _, err := fmt.Fprintf(bw, "P\t%s\t%s\n", hfi.Name, hfi.Abbrev); err != nil {
				return err
			}
			continue
		}
		parentAbbrev := ""
		if parent, ok := r.GetNth(hfi.Parent); ok {
			parentAbbrev = parent.Abbrev
		}
		if _, err := fmt.Fprintf(bw, "F\t%s\t%s\t%s\t%s\t%s\n",
			hfi.Name, hfi.Abbrev, hfi.Type, parentAbbrev, hfi.Blurb); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DumpFieldTypes writes one line per entry of the closed FT_* enum, "name".
// Supplements spec §4.7 per SPEC_FULL §11 (proto_registrar_dump_fieldtypes).
func (r *Registrar) DumpFieldTypes(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, t := range ftype.All {
		if _, err := fmt.Fprintf(bw, "%s\n", t); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// isChainHead reports whether hfi is the head of its same-abbreviation
// chain, i.e. what GetByName(hfi.Abbrev) would return.
func (r *Registrar) isChainHead(hfi *HeaderFieldInfo) bool {
	head, ok := r.byAbbrev[hfi.Abbrev]
	return ok && head == hfi.ID
}
