// Package ftype defines the closed field-type and display-base enumerations
// that every header-field descriptor in the registrar is tagged with.
//
// The set is deliberately closed: dissectors cannot introduce new field
// types, only new fields typed with one of these.
package ftype

import "fmt"

// FieldType is the closed set of semantic value kinds a header field can
// hold. The numeric values are internal only and are not a stable wire
// contract.
type FieldType uint8

const (
	None FieldType = iota
	Protocol
	Bytes
	UintBytes
	Bool
	Uint8
	Uint16
	Uint24
	Uint32
	Uint64
	Int8
	Int16
	Int24
	Int32
	Int64
	FrameNum
	IPv4
	IPv6
	IpxNet
	Ether
	String
	StringZ
	UintString
	AbsTime
	RelTime
	Float
	Double
)

var names = [...]string{
	None:       "FT_NONE",
	Protocol:   "FT_PROTOCOL",
	Bytes:      "FT_BYTES",
	UintBytes:  "FT_UINT_BYTES",
	Bool:       "FT_BOOLEAN",
	Uint8:      "FT_UINT8",
	Uint16:     "FT_UINT16",
	Uint24:     "FT_UINT24",
	Uint32:     "FT_UINT32",
	Uint64:     "FT_UINT64",
	Int8:       "FT_INT8",
	Int16:      "FT_INT16",
	Int24:      "FT_INT24",
	Int32:      "FT_INT32",
	Int64:      "FT_INT64",
	FrameNum:   "FT_FRAMENUM",
	IPv4:       "FT_IPv4",
	IPv6:       "FT_IPv6",
	IpxNet:     "FT_IPXNET",
	Ether:      "FT_ETHER",
	String:     "FT_STRING",
	StringZ:    "FT_STRINGZ",
	UintString: "FT_UINT_STRING",
	AbsTime:    "FT_ABSOLUTE_TIME",
	RelTime:    "FT_RELATIVE_TIME",
	Float:      "FT_FLOAT",
	Double:     "FT_DOUBLE",
}

// All lists every member of the closed FieldType enumeration in declaration
// order, for administrative dumps (spec §4.7 / SPEC_FULL §11).
var All = []FieldType{
	None, Protocol, Bytes, UintBytes, Bool,
	Uint8, Uint16, Uint24, Uint32, Uint64,
	Int8, Int16, Int24, Int32, Int64,
	FrameNum, IPv4, IPv6, IpxNet, Ether,
	String, StringZ, UintString, AbsTime, RelTime, Float, Double,
}

// String implements fmt.Stringer.
func (t FieldType) String() string {
	if int(t) < len(names) && names[t] != "" {
		return names[t]
	}
	return fmt.Sprintf("FT_UNKNOWN_%d", uint8(t))
}

// FixedWidth returns the intrinsic serialized width in bytes for types that
// have one, and ok=false for types whose width is determined at dissection
// time (None, Protocol, Bytes, UintBytes, String, StringZ, UintString).
func (t FieldType) FixedWidth() (width int, ok bool) {
	switch t {
	case Bool, Uint8, Int8:
		return 1, true
	case Uint16, Int16:
		return 2, true
	case Uint24, Int24:
		return 3, true
	case Uint32, Int32, FrameNum, IPv4, IpxNet, Float:
		return 4, true
	case Uint64, Int64, Double, AbsTime, RelTime:
		return 8, true
	case Ether:
		return 6, true
	case IPv6:
		return 16, true
	default:
		return 0, false
	}
}

// IsInteger reports whether t is one of the fixed-width signed or unsigned
// integer types (not FrameNum, not Bool).
func (t FieldType) IsInteger() bool {
	switch t {
	case Uint8, Uint16, Uint24, Uint32, Uint64,
		Int8, Int16, Int24, Int32, Int64:
		return true
	default:
		return false
	}
}

// IsSigned reports whether t is a signed integer type.
func (t FieldType) IsSigned() bool {
	switch t {
	case Int8, Int16, Int24, Int32, Int64:
		return true
	default:
		return false
	}
}

// AllowsNegativeOneLength reports whether a length of -1 ("rest of buffer",
// or "scan for terminator" for StringZ) is a valid caller-supplied length
// for this type, per spec §4.4 step 2.
func (t FieldType) AllowsNegativeOneLength() bool {
	switch t {
	case None, Protocol, Bytes, String, StringZ:
		return true
	default:
		return false
	}
}

// AllowsValueMapOrTrueFalse reports whether value_map/true_false mappings
// are permitted for t: integer types of 32 bits or narrower, booleans, or
// frame numbers.
func (t FieldType) AllowsValueMapOrTrueFalse() bool {
	switch t {
	case Bool, FrameNum, Uint8, Uint16, Uint24, Uint32, Int8, Int16, Int24, Int32:
		return true
	default:
		return false
	}
}

// AllowsBitmask reports whether a non-zero bitmask is permitted for t:
// integer and boolean types only.
func (t FieldType) AllowsBitmask() bool {
	return t.IsInteger() || t == Bool
}
