// Package registrar implements the process-wide catalog of protocol and
// header-field descriptors: numeric handles, the dotted-abbreviation index,
// and the same-abbreviation alias chain used by bit-sliced fields.
//
// The registrar is populated once at startup (see Init) and is read-only
// thereafter; there is no locking because there is no concurrent writer.
package registrar

import (
	"iter"

	"github.com/pktdissect/pktdissect/pkg/ftype"
)

// Handle is a stable index into the registrar's dense HFI vector.
type Handle int32

// InvalidHandle is the sentinel "unset" handle, used both as the required
// initial value of a FieldRegistration's Out slot and as HeaderFieldInfo.Parent
// for an HFI that is itself a protocol.
const InvalidHandle Handle = -1

// HeaderFieldInfo is the registrar's record for one field or protocol.
// See spec §3 for the field-by-field invariants.
type HeaderFieldInfo struct {
	Name   string
	Abbrev string

	Type    ftype.FieldType
	Display ftype.DisplayBase

	ValueMap    map[uint64]string // integer -> label, nil if unused
	TrueString  string            // boolean true label when HasBoolMap is set, else "True"
	FalseString string            // boolean false label when HasBoolMap is set, else "False"
	HasBoolMap  bool              // true iff True/FalseString were set explicitly

	Bitmask  uint64
	Bitshift uint // trailing zero bits of Bitmask

	Blurb string

	Parent Handle // owning protocol's handle, or InvalidHandle iff this is a protocol
	ID     Handle // this HFI's own handle

	SameNamePrev Handle
	SameNameNext Handle
}

// Protocol is the registrar's record for one registered protocol.
type Protocol struct {
	LongName   string
	ShortName  string
	FilterName string
	ProtoID    Handle
	Fields     []Handle // ordered by registration

	enabled    bool
	canDisable bool
}

// Enabled reports whether dissection of this protocol is currently active.
func (p *Protocol) Enabled() bool { return p.enabled }

// CanDisable reports whether SetDecoding is permitted for this protocol.
func (p *Protocol) CanDisable() bool { return p.canDisable }

// FieldRegistration describes one field to be registered under a protocol
// via RegisterFieldArray. Out receives the assigned handle; it must hold
// InvalidHandle (or the zero value 0 is NOT accepted as a sentinel — callers
// must explicitly initialize *Out to InvalidHandle) before registration,
// guarding against accidental double registration.
type FieldRegistration struct {
	Name    string
	Abbrev  string
	Type    ftype.FieldType
	Display ftype.DisplayBase

	ValueMap    map[uint64]string
	TrueString  string
	FalseString string
	HasBoolMap  bool

	Bitmask uint64
	Blurb   string

	Out *Handle
}

// Registrar is the process-wide catalog. The zero value is not usable;
// construct with New.
type Registrar struct {
	hfis      []*HeaderFieldInfo
	byAbbrev  map[string]Handle // abbrev -> chain head
	protocols []*Protocol
	protoByID map[Handle]*Protocol

	subtreeCount int

	sealed bool

	textOnlyHandle Handle
}

// New constructs an empty Registrar. Most callers should use Init instead,
// which also installs the sentinel text-only HFI and runs the registration
// phases.
func New() *Registrar {
	return &Registrar{
		byAbbrev:       make(map[string]Handle),
		protoByID:      make(map[Handle]*Protocol),
		textOnlyHandle: InvalidHandle,
	}
}

// nextHandle appends hfi to the dense vector and returns its assigned handle.
func (r *Registrar) nextHandle(hfi *HeaderFieldInfo) Handle {
	h := Handle(len(r.hfis))
	hfi.ID = h
	r.hfis = append(r.hfis, hfi)
	return h
}

func (r *Registrar) indexAbbrev(hfi *HeaderFieldInfo) {
	if hfi.Name == "" && hfi.Abbrev == "" {
		return // sentinel text-only HFI: never indexed for filters
	}
	if hfi.Abbrev == "" {
		return
	}
	if prevHead, exists := r.byAbbrev[hfi.Abbrev]; exists {
		// Link the new HFI in front of the current head, so the new HFI
		// becomes the chain head and the old head its next member.
		head := r.hfis[prevHead]
		hfi.SameNameNext = head.ID
		head.SameNamePrev = hfi.ID
	}
	hfi.SameNamePrev = InvalidHandle
	r.byAbbrev[hfi.Abbrev] = hfi.ID
}

// RegisterProtocol registers a new protocol and allocates its HFI. Fails if
// any of longName/shortName/filterName collides with an already-registered
// protocol's corresponding name.
func (r *Registrar) RegisterProtocol(longName, shortName, filterName string) (Handle, error) {
	if r.sealed {
		return InvalidHandle, fatalf(ErrKindSealed, "RegisterProtocol called after sealing")
	}
	for _, p := range r.protocols {
		if p.LongName == longName || p.ShortName == shortName || p.FilterName == filterName {
			return InvalidHandle, fatalf(ErrKindNameCollision,
				"protocol name collision: %q/%q/%q vs existing %q/%q/%q",
				longName, shortName, filterName, p.LongName, p.ShortName, p.FilterName)
		}
	}

	hfi := &HeaderFieldInfo{
		Name:         longName,
		Abbrev:       filterName,
		Type:         ftype.Protocol,
		Parent:       InvalidHandle,
		SameNamePrev: InvalidHandle,
		SameNameNext: InvalidHandle,
	}
	h := r.nextHandle(hfi)
	r.indexAbbrev(hfi)

	p := &Protocol{
		LongName:   longName,
		ShortName:  shortName,
		FilterName: filterName,
		ProtoID:    h,
		enabled:    true,
		canDisable: true,
	}
	r.protocols = append(r.protocols, p)
	r.protoByID[h] = p
	return h, nil
}

// RegisterFieldArray registers every field in regs under parent, validating
// each per spec §4.2. All registrations either all succeed or the first
// failure is returned and no further entries in regs are processed (the
// caller's dissector code is buggy either way and should be fixed, not
// partially recovered from).
func (r *Registrar) RegisterFieldArray(parent Handle, regs []FieldRegistration) error {
	if r.sealed {
		return fatalf(ErrKindSealed, "RegisterFieldArray called after sealing")
	}
	for i := range regs {
		reg := &regs[i]
		if reg.Out == nil {
			return fatalf(ErrKindDoubleRegister, "field %q has nil Out slot", reg.Abbrev)
		}
		if *reg.Out != InvalidHandle {
			return fatalf(ErrKindDoubleRegister,
				"field %q: Out slot already holds handle %d, double registration?", reg.Abbrev, *reg.Out)
		}
		if err := validateField(reg); err != nil {
			return err
		}

		bitshift := uint(0)
		if reg.Bitmask != 0 {
			bitshift = trailingZeros64(reg.Bitmask)
		}

		hfi := &HeaderFieldInfo{
			Name:         reg.Name,
			Abbrev:       reg.Abbrev,
			Type:         reg.Type,
			Display:      reg.Display,
			ValueMap:     reg.ValueMap,
			TrueString:   reg.TrueString,
			FalseString:  reg.FalseString,
			HasBoolMap:   reg.HasBoolMap,
			Bitmask:      reg.Bitmask,
			Bitshift:     bitshift,
			Blurb:        reg.Blurb,
			Parent:       parent,
			SameNamePrev: InvalidHandle,
			SameNameNext: InvalidHandle,
		}
		h := r.nextHandle(hfi)
		r.indexAbbrev(hfi)
		*reg.Out = h

		if p, ok := r.protoByID[parent]; ok {
			p.Fields = append(p.Fields, h)
		}
	}
	return nil
}

func validateField(reg *FieldRegistration) error {
	if reg.Name == "" && reg.Abbrev != "" || reg.Name != "" && reg.Abbrev == "" {
		// Both empty is the sentinel text-only convention; one-sided empty
		// is always a dissector bug.
		return fatalf(ErrKindInvalidField, "field has empty Name xor Abbrev (%q/%q)", reg.Name, reg.Abbrev)
	}
	if reg.Bitmask != 0 && !reg.Type.AllowsBitmask() {
		return fatalf(ErrKindInvalidField, "field %q: bitmask set on non-integer/boolean type %s", reg.Abbrev, reg.Type)
	}
	if (reg.ValueMap != nil || reg.HasBoolMap) && !reg.Type.AllowsValueMapOrTrueFalse() {
		return fatalf(ErrKindInvalidField, "field %q: value_map/true_false not permitted for type %s", reg.Abbrev, reg.Type)
	}
	if reg.Type == ftype.FrameNum && (reg.Bitmask != 0 || reg.ValueMap != nil) {
		return fatalf(ErrKindInvalidField, "field %q: FT_FRAMENUM forbids bitmask and value_map", reg.Abbrev)
	}
	if reg.Type.RequiresNonNoneBase() && reg.Display == ftype.BaseNone {
		return fatalf(ErrKindInvalidField, "field %q: integer type %s requires a display base", reg.Abbrev, reg.Type)
	}
	return nil
}

func trailingZeros64(m uint64) uint {
	if m == 0 {
		return 0
	}
	var n uint
	for m&1 == 0 {
		m >>= 1
		n++
	}
	return n
}

// GetNth returns the HFI for handle h.
func (r *Registrar) GetNth(h Handle) (*HeaderFieldInfo, bool) {
	if h < 0 || int(h) >= len(r.hfis) {
		return nil, false
	}
	return r.hfis[h], true
}

// GetByName returns the chain-head HFI registered under abbrev.
func (r *Registrar) GetByName(abbrev string) (*HeaderFieldInfo, bool) {
	h, ok := r.byAbbrev[abbrev]
	if !ok {
		return nil, false
	}
	return r.hfis[h], true
}

// TextOnlyHandle returns the handle of the sentinel FT_NONE HFI installed by
// Init, used internally by text-only tree node adds.
func (r *Registrar) TextOnlyHandle() Handle { return r.textOnlyHandle }

// RegisterSubtreeTypes assigns each element of outs a consecutive subtree
// index, starting at the current count. Must be called before the
// subtree-expansion table is sized (dtree.NewExpansionTable). Calling it
// after sealing panics with a *FatalError of kind ErrKindSealed.
func (r *Registrar) RegisterSubtreeTypes(outs ...*int) {
	if r.sealed {
		panic(fatalf(ErrKindSealed, "RegisterSubtreeTypes called after sealing"))
	}
	for _, out := range outs {
		*out = r.subtreeCount
		r.subtreeCount++
	}
}

// SubtreeTypeCount returns the number of subtree types registered so far.
func (r *Registrar) SubtreeTypeCount() int { return r.subtreeCount }

// Protocols iterates registered protocols in registration order.
func (r *Registrar) Protocols() iter.Seq[*Protocol] {
	return func(yield func(*Protocol) bool) {
		for _, p := range r.protocols {
			if !yield(p) {
				return
			}
		}
	}
}

// ProtocolFields iterates the HFIs of proto's fields in registration order.
func (r *Registrar) ProtocolFields(proto *Protocol) iter.Seq[*HeaderFieldInfo] {
	return func(yield func(*HeaderFieldInfo) bool) {
		for _, h := range proto.Fields {
			hfi, ok := r.GetNth(h)
			if !ok {
				continue
			}
			if !yield(hfi) {
				return
			}
		}
	}
}

// IsEnabled reports whether the protocol registered under protoID is
// currently enabled for decoding. A handle that is not a protocol's own
// handle reports false.
func (r *Registrar) IsEnabled(protoID Handle) bool {
	p, ok := r.protoByID[protoID]
	return ok && p.enabled
}

// CanDisable reports whether SetDecoding is permitted for protoID.
func (r *Registrar) CanDisable(protoID Handle) bool {
	p, ok := r.protoByID[protoID]
	return ok && p.canDisable
}

// SetDecoding enables or disables a protocol. No-op (but not an error) if
// the protocol cannot be disabled and enabled is false.
func (r *Registrar) SetDecoding(protoID Handle, enabled bool) {
	p, ok := r.protoByID[protoID]
	if !ok {
		return
	}
	if !enabled && !p.canDisable {
		return
	}
	p.enabled = enabled
}

// SetCantDisable marks a protocol as permanently enabled and not
// user-disableable.
func (r *Registrar) SetCantDisable(protoID Handle) {
	if p, ok := r.protoByID[protoID]; ok {
		p.canDisable = false
		p.enabled = true
	}
}
