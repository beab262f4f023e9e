// Package value implements the tagged-union value cell that every
// dissection-tree node carries: exactly one decoded value per field,
// modeled as a sum type rather than a C-style union so that cross-type
// access is a compile error, not undefined behavior.
package value

import (
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/pktdissect/pktdissect/pkg/ftype"
)

// Value holds one decoded field value. The zero Value is FT_NONE.
//
// Ownership: byte-vector, text, and sub-protocol variants own the backing
// []byte they point at. Set* methods always copy their input; callers that
// already hold a heap buffer exclusively for this Value should use the
// Adopt* variants, which take ownership without copying (see AdoptBytes).
// This mirrors the source's "already_allocated" hint on set.
type Value struct {
	typ ftype.FieldType

	u64 uint64 // Uint8/16/24/32/64, Bool, FrameNum, IpxNet store here unsigned
	i64 int64  // Int8/16/24/32/64 store here
	f64 float64

	bytes []byte // Bytes, UintBytes, Ether
	str   string // String, StringZ, UintString

	ipv4 netip.Addr
	ipv6 netip.Addr

	t time.Time    // AbsTime
	d time.Duration // RelTime

	// protoFull describes the FT_Protocol "select these bytes"
	// reference: when protoFull is true the Value refers to the entire
	// data-source buffer, otherwise to an empty reference (see spec §4.4).
	protoFull bool
}

// Type returns the FieldType this Value is tagged with.
func (v *Value) Type() ftype.FieldType { return v.typ }

// SetNone clears v to the FT_NONE value.
func (v *Value) SetNone() { *v = Value{typ: ftype.None} }

// SetProtocolSegment records a "select protocol bytes" reference: full=true
// for the whole buffer (start==0 per spec §4.4), false for an empty
// reference otherwise.
func (v *Value) SetProtocolSegment(full bool) {
	*v = Value{typ: ftype.Protocol, protoFull: full}
}

// SetUint stores an unsigned integer value for Uint8/16/24/32/64, Bool,
// FrameNum, or IpxNet. The caller is responsible for having already applied
// any bitmask/shift.
func (v *Value) SetUint(t ftype.FieldType, n uint64) {
	*v = Value{typ: t, u64: n}
}

// SetInt stores a signed integer value for Int8/16/24/32/64.
func (v *Value) SetInt(t ftype.FieldType, n int64) {
	*v = Value{typ: t, i64: n}
}

// SetBool stores a boolean as FT_BOOLEAN; true iff n != 0, per spec §4.4.
func (v *Value) SetBool(n uint64) {
	*v = Value{typ: ftype.Bool, u64: n}
}

// SetBytes copies data and stores it as FT_BYTES (or FT_UINT_BYTES, passed
// explicitly by the caller, whose prefix has already been consumed).
func (v *Value) SetBytes(t ftype.FieldType, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	*v = Value{typ: t, bytes: cp}
}

// AdoptBytes stores data as FT_BYTES/FT_UINT_BYTES without copying. The
// caller must not retain or mutate data afterwards.
func (v *Value) AdoptBytes(t ftype.FieldType, data []byte) {
	*v = Value{typ: t, bytes: data}
}

// SetEther copies a 6-byte MAC address.
func (v *Value) SetEther(mac net.HardwareAddr) {
	cp := make([]byte, 6)
	copy(cp, mac)
	*v = Value{typ: ftype.Ether, bytes: cp}
}

// SetIPv4 stores a 32-bit IPv4 address. Network-order bytes are preserved
// inside the address value, per spec §4.4.
func (v *Value) SetIPv4(addr netip.Addr) {
	*v = Value{typ: ftype.IPv4, ipv4: addr}
}

// SetIPv6 copies a 16-byte IPv6 address.
func (v *Value) SetIPv6(addr netip.Addr) {
	*v = Value{typ: ftype.IPv6, ipv6: addr}
}

// SetIpxNet stores a 4-byte big-endian IPX network number.
func (v *Value) SetIpxNet(n uint32) {
	*v = Value{typ: ftype.IpxNet, u64: uint64(n)}
}

// SetString stores s as the text value of type t. No terminating NUL is
// stored (Go strings are not NUL-terminated); a terminator on the wire is
// accounted for only by the FieldInfo's Length, which the builder sets.
func (v *Value) SetString(t ftype.FieldType, s string) {
	*v = Value{typ: t, str: s}
}

// AppendString concatenates suffix to the stored string. Valid only for
// FT_STRING/FT_STRINGZ, per spec §4.4.
func (v *Value) AppendString(suffix string) error {
	if v.typ != ftype.String && v.typ != ftype.StringZ {
		return fmt.Errorf("value: AppendString not valid for %s", v.typ)
	}
	v.str += suffix
	return nil
}

// SetFloat stores a 32-bit float value, caller-supplied (not projected from
// bytes by this layer).
func (v *Value) SetFloat(f float32) { *v = Value{typ: ftype.Float, f64: float64(f)} }

// SetDouble stores a 64-bit float value, caller-supplied.
func (v *Value) SetDouble(f float64) { *v = Value{typ: ftype.Double, f64: f} }

// SetAbsTime stores an absolute timestamp, caller-supplied.
func (v *Value) SetAbsTime(t time.Time) { *v = Value{typ: ftype.AbsTime, t: t} }

// SetRelTime stores a relative duration, caller-supplied.
func (v *Value) SetRelTime(d time.Duration) { *v = Value{typ: ftype.RelTime, d: d} }

// GetUint returns the stored unsigned integer and true if v holds one of
// Uint8/16/24/32/64, Bool, FrameNum, or IpxNet.
func (v *Value) GetUint() (uint64, bool) {
	switch v.typ {
	case ftype.Uint8, ftype.Uint16, ftype.Uint24, ftype.Uint32, ftype.Uint64,
		ftype.Bool, ftype.FrameNum, ftype.IpxNet:
		return v.u64, true
	default:
		return 0, false
	}
}

// GetInt returns the stored signed integer and true if v holds one of
// Int8/16/24/32/64.
func (v *Value) GetInt() (int64, bool) {
	if v.typ.IsSigned() {
		return v.i64, true
	}
	return 0, false
}

// GetFloating returns the stored float/double value and true if applicable.
func (v *Value) GetFloating() (float64, bool) {
	if v.typ == ftype.Float || v.typ == ftype.Double {
		return v.f64, true
	}
	return 0, false
}

// GetBytes returns the stored byte slice for Bytes/UintBytes/Ether; the
// caller must not mutate the returned slice.
func (v *Value) GetBytes() ([]byte, bool) {
	switch v.typ {
	case ftype.Bytes, ftype.UintBytes, ftype.Ether:
		return v.bytes, true
	default:
		return nil, false
	}
}

// GetIPv4 returns the stored address for FT_IPv4.
func (v *Value) GetIPv4() (netip.Addr, bool) {
	if v.typ == ftype.IPv4 {
		return v.ipv4, true
	}
	return netip.Addr{}, false
}

// GetIPv6 returns the stored address for FT_IPv6.
func (v *Value) GetIPv6() (netip.Addr, bool) {
	if v.typ == ftype.IPv6 {
		return v.ipv6, true
	}
	return netip.Addr{}, false
}

// GetString returns the stored text for String/StringZ/UintString.
func (v *Value) GetString() (string, bool) {
	switch v.typ {
	case ftype.String, ftype.StringZ, ftype.UintString:
		return v.str, true
	default:
		return "", false
	}
}

// GetTime returns the stored absolute or relative time value.
func (v *Value) GetTime() (abs time.Time, rel time.Duration, ok bool) {
	switch v.typ {
	case ftype.AbsTime:
		return v.t, 0, true
	case ftype.RelTime:
		return time.Time{}, v.d, true
	default:
		return time.Time{}, 0, false
	}
}

// GetProtocolSegment reports whether this is an FT_Protocol "whole buffer"
// self-reference.
func (v *Value) GetProtocolSegment() (full bool, ok bool) {
	if v.typ == ftype.Protocol {
		return v.protoFull, true
	}
	return false, false
}
