package fieldbuilder

import (
	"net"
	"net/netip"

	"github.com/pktdissect/pktdissect/internal/ibuf"
	"github.com/pktdissect/pktdissect/pkg/dtree"
	"github.com/pktdissect/pktdissect/pkg/ftype"
	"github.com/pktdissect/pktdissect/pkg/registrar"
	"github.com/pktdissect/pktdissect/pkg/tvb"
)

// AddIPv4 builds a 4-byte FT_IPv4 field. The address is stored in the
// network byte order found in the buffer, per spec §4.4.
func AddIPv4(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start int, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.IPv4)
	if err != nil {
		return nil, err
	}
	length, err := resolveLength(hfi.Type, buf, start, 4)
	if err != nil {
		return nil, err
	}
	raw, rerr := buf.Memcpy(start, 4)
	if rerr != nil {
		return nil, rerr
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetIPv4(netip.AddrFrom4([4]byte(raw)))
	return tree.AppendChild(parent, fi)
}

// AddIPv6 builds a 16-byte FT_IPv6 field.
func AddIPv6(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start int, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.IPv6)
	if err != nil {
		return nil, err
	}
	length, err := resolveLength(hfi.Type, buf, start, 16)
	if err != nil {
		return nil, err
	}
	raw, rerr := buf.Memcpy(start, 16)
	if rerr != nil {
		return nil, rerr
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetIPv6(netip.AddrFrom16([16]byte(raw)))
	return tree.AppendChild(parent, fi)
}

// AddEther builds a 6-byte FT_ETHER field.
func AddEther(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start int, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.Ether)
	if err != nil {
		return nil, err
	}
	length, err := resolveLength(hfi.Type, buf, start, 6)
	if err != nil {
		return nil, err
	}
	raw, rerr := buf.Memcpy(start, 6)
	if rerr != nil {
		return nil, rerr
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetEther(net.HardwareAddr(raw))
	return tree.AppendChild(parent, fi)
}

// AddIpxNet builds a 4-byte big-endian FT_IPXNET field.
func AddIpxNet(tree *dtree.Tree, parent *dtree.Node, reg *registrar.Registrar, buf tvb.Buffer, handle registrar.Handle, start int, opts ...Option) (*dtree.Node, error) {
	hfi, err := resolveHFI(reg, handle, ftype.IpxNet)
	if err != nil {
		return nil, err
	}
	length, err := resolveLength(hfi.Type, buf, start, 4)
	if err != nil {
		return nil, err
	}
	n, rerr := buf.U32(start, ibuf.BigEndian)
	if rerr != nil {
		return nil, rerr
	}

	o := applyOptions(opts)
	fi := newFI(tree, buf, handle, start, length, o)
	fi.Value.SetIpxNet(n)
	return tree.AppendChild(parent, fi)
}
