package label

import (
	"fmt"

	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/registrar"
)

// resolveHostname stands in for the source's get_hostname/get_hostname6:
// a reverse-DNS lookup of addr, falling back to its literal form when
// nothing resolves. This build carries no resolver, so it always falls
// back to literal.
func resolveHostname(literal string) string {
	return literal
}

func renderIPv4(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) string {
	addr, _ := fi.Value.GetIPv4()
	literal := addr.String()
	return fmt.Sprintf("%s: %s (%s)", hfi.Name, resolveHostname(literal), literal)
}

func renderIPv6(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) string {
	addr, _ := fi.Value.GetIPv6()
	literal := addr.String()
	return fmt.Sprintf("%s: %s (%s)", hfi.Name, resolveHostname(literal), literal)
}

func renderEther(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) string {
	mac, _ := fi.Value.GetBytes()
	literal := formatColonHex(mac)
	// get_ether_name resolves a manufacturer name; with no resolver it
	// falls back to the same colon-hex literal.
	return fmt.Sprintf("%s: %s (%s)", hfi.Name, literal, literal)
}

func renderIpxNet(fi *dtree.FieldInfo, hfi *registrar.HeaderFieldInfo) string {
	n, _ := fi.Value.GetUint()
	// get_ipxnet_name resolves a network name; with no resolver it falls
	// back to the bare 8-hex-digit form of the same address.
	return fmt.Sprintf("%s: 0x%08X (%08X)", hfi.Name, n, n)
}

func formatColonHex(b []byte) string {
	out := make([]byte, 0, len(b)*3)
	for i, c := range b {
		if i > 0 {
			out = append(out, ':')
		}
		out = append(out, hexDigit(c>>4), hexDigit(c&0xF))
	}
	return string(out)
}

func hexDigit(n byte) byte {
	if n < 10 {
		return '0' + n
	}
	return 'a' + (n - 10)
}
