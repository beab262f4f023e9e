package registrar

import "github.com/pktdissect/pktdissect/pkg/ftype"

// Init is the engine's initialization entry point (spec §6). It clears any
// prior state (a fresh Registrar is always returned; there is deliberately
// no global singleton to mutate), registers the sentinel text-only HFI as
// the very first handle, invokes registerAll to let dissectors register
// their protocols and fields, invokes registerHandoffs, and then seals the
// registrar so that RegisterProtocol/RegisterFieldArray/RegisterSubtreeTypes
// become permanently unavailable.
//
// pluginDir is accepted for interface fidelity with the source design but
// unused: plugin loading is explicitly out of scope (spec §1).
func Init(pluginDir string, registerAll, registerHandoffs func(*Registrar)) *Registrar {
	_ = pluginDir

	r := New()

	sentinel := &HeaderFieldInfo{
		Type:         ftype.None,
		Parent:       InvalidHandle,
		SameNamePrev: InvalidHandle,
		SameNameNext: InvalidHandle,
	}
	r.textOnlyHandle = r.nextHandle(sentinel)

	if registerAll != nil {
		registerAll(r)
	}
	if registerHandoffs != nil {
		registerHandoffs(r)
	}

	r.sealed = true
	return r
}

// Sealed reports whether registration has completed; after sealing the
// registration methods (RegisterProtocol, RegisterFieldArray,
// RegisterSubtreeTypes) are rejected, while queries (GetNth, GetByName,
// Protocols, ProtocolFields, IsEnabled, CanDisable) and the decoding flags
// (SetDecoding, SetCantDisable) remain available. This realizes the source's
// type-state split between a build-time and a query-time registrar without a
// separate Go type.
func (r *Registrar) Sealed() bool { return r.sealed }
