// Package proposals defines the pure value objects used to key and
// namespace all durable relayer state: resource identifiers, chain
// identifiers, target systems, and the various store keys derived from
// them. None of these types perform I/O; they only encode and decode.
package proposals

import (
	"encoding/binary"
	"fmt"
)

// TargetSystemKind discriminates the TargetSystem tagged union.
type TargetSystemKind uint8

const (
	// TargetSystemContractAddress tags a 20-byte EVM contract address.
	TargetSystemContractAddress TargetSystemKind = iota
	// TargetSystemSubstrate tags a pallet-index/tree-id pair.
	TargetSystemSubstrate
)

// targetSystemLen is the fixed wire size of a TargetSystem, tag included.
const targetSystemLen = 26

// TargetSystem is a tagged union identifying the contract or pallet/tree a
// ResourceId points at. The zero value is not meaningful; construct one
// with NewContractAddressTargetSystem or NewSubstrateTargetSystem.
type TargetSystem struct {
	kind          TargetSystemKind
	contractAddr  [20]byte
	palletIndex   uint8
	treeID        uint32
}

// NewContractAddressTargetSystem builds a TargetSystem for an EVM contract.
func NewContractAddressTargetSystem(addr [20]byte) TargetSystem {
	return TargetSystem{kind: TargetSystemContractAddress, contractAddr: addr}
}

// NewSubstrateTargetSystem builds a TargetSystem for a Substrate pallet/tree.
func NewSubstrateTargetSystem(palletIndex uint8, treeID uint32) TargetSystem {
	return TargetSystem{kind: TargetSystemSubstrate, palletIndex: palletIndex, treeID: treeID}
}

// Kind reports which variant this TargetSystem holds.
func (t TargetSystem) Kind() TargetSystemKind { return t.kind }

// ContractAddress returns the underlying address, valid only when
// Kind() == TargetSystemContractAddress.
func (t TargetSystem) ContractAddress() [20]byte { return t.contractAddr }

// PalletIndex returns the pallet index, valid only when
// Kind() == TargetSystemSubstrate.
func (t TargetSystem) PalletIndex() uint8 { return t.palletIndex }

// TreeID returns the tree id, valid only when Kind() == TargetSystemSubstrate.
func (t TargetSystem) TreeID() uint32 { return t.treeID }

// Bytes encodes the TargetSystem into its fixed 26-byte wire form: one tag
// byte followed by the variant's payload, zero-padded to fill the
// remaining 25 bytes.
func (t TargetSystem) Bytes() [targetSystemLen]byte {
	var out [targetSystemLen]byte
	out[0] = byte(t.kind)
	switch t.kind {
	case TargetSystemContractAddress:
		copy(out[1:21], t.contractAddr[:])
	case TargetSystemSubstrate:
		out[1] = t.palletIndex
		binary.BigEndian.PutUint32(out[2:6], t.treeID)
	}
	return out
}

// DecodeTargetSystem parses the 26-byte wire form produced by Bytes.
func DecodeTargetSystem(b [targetSystemLen]byte) (TargetSystem, error) {
	switch TargetSystemKind(b[0]) {
	case TargetSystemContractAddress:
		var addr [20]byte
		copy(addr[:], b[1:21])
		return NewContractAddressTargetSystem(addr), nil
	case TargetSystemSubstrate:
		palletIndex := b[1]
		treeID := binary.BigEndian.Uint32(b[2:6])
		return NewSubstrateTargetSystem(palletIndex, treeID), nil
	default:
		return TargetSystem{}, fmt.Errorf("proposals: unknown target system tag %d", b[0])
	}
}

// TypedChainIdKind discriminates the TypedChainId tagged union.
type TypedChainIdKind uint8

const (
	// TypedChainIdEvm tags an EVM chain id.
	TypedChainIdEvm TypedChainIdKind = iota
	// TypedChainIdSubstrate tags a Substrate chain id.
	TypedChainIdSubstrate
)

const typedChainIDLen = 6

// TypedChainId is a tagged chain identifier: an ecosystem tag plus the
// underlying numeric chain id.
type TypedChainId struct {
	kind TypedChainIdKind
	id   uint32
}

// NewEvmTypedChainId builds an Evm TypedChainId.
func NewEvmTypedChainId(id uint32) TypedChainId {
	return TypedChainId{kind: TypedChainIdEvm, id: id}
}

// NewSubstrateTypedChainId builds a Substrate TypedChainId.
func NewSubstrateTypedChainId(id uint32) TypedChainId {
	return TypedChainId{kind: TypedChainIdSubstrate, id: id}
}

// Kind reports which ecosystem this TypedChainId belongs to.
func (c TypedChainId) Kind() TypedChainIdKind { return c.kind }

// UnderlyingChainID returns the raw numeric chain id.
func (c TypedChainId) UnderlyingChainID() uint32 { return c.id }

// Bytes encodes the TypedChainId into its fixed 6-byte wire form: byte 0
// is the tag, byte 1 is reserved (always zero), bytes 2..6 are the
// big-endian chain id.
func (c TypedChainId) Bytes() [typedChainIDLen]byte {
	var out [typedChainIDLen]byte
	out[0] = byte(c.kind)
	binary.BigEndian.PutUint32(out[2:6], c.id)
	return out
}

// DecodeTypedChainId parses the 6-byte wire form produced by Bytes.
func DecodeTypedChainId(b [typedChainIDLen]byte) (TypedChainId, error) {
	id := binary.BigEndian.Uint32(b[2:6])
	switch TypedChainIdKind(b[0]) {
	case TypedChainIdEvm:
		return NewEvmTypedChainId(id), nil
	case TypedChainIdSubstrate:
		return NewSubstrateTypedChainId(id), nil
	default:
		return TypedChainId{}, fmt.Errorf("proposals: unknown typed chain id tag %d", b[0])
	}
}

// ResourceIdLen is the fixed wire size of a ResourceId.
const ResourceIdLen = targetSystemLen + typedChainIDLen

// ResourceId is a 32-byte globally unique identifier of a target system on
// a particular chain: TargetSystem (26 bytes) followed by TypedChainId (6
// bytes).
type ResourceId [ResourceIdLen]byte

// NewResourceId builds a ResourceId from its two constituent parts.
func NewResourceId(target TargetSystem, chain TypedChainId) ResourceId {
	var out ResourceId
	ts := target.Bytes()
	copy(out[:targetSystemLen], ts[:])
	cid := chain.Bytes()
	copy(out[targetSystemLen:], cid[:])
	return out
}

// TargetSystem extracts the TargetSystem half of the ResourceId.
func (r ResourceId) TargetSystem() (TargetSystem, error) {
	var ts [targetSystemLen]byte
	copy(ts[:], r[:targetSystemLen])
	return DecodeTargetSystem(ts)
}

// TypedChainId extracts the TypedChainId half of the ResourceId.
func (r ResourceId) TypedChainId() (TypedChainId, error) {
	var cid [typedChainIDLen]byte
	copy(cid[:], r[targetSystemLen:])
	return DecodeTypedChainId(cid)
}

// Bytes returns the 32-byte wire form of the ResourceId.
func (r ResourceId) Bytes() [ResourceIdLen]byte { return [ResourceIdLen]byte(r) }

func (r ResourceId) String() string {
	return fmt.Sprintf("ResourceId(%x)", [ResourceIdLen]byte(r))
}
