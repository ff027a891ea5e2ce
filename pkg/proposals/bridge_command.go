package proposals

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// BridgeCommandKind discriminates the BridgeCommand tagged union.
type BridgeCommandKind uint8

const (
	// BridgeCommandExecuteProposalWithSignature submits a signed proposal.
	BridgeCommandExecuteProposalWithSignature BridgeCommandKind = iota
	// BridgeCommandTransferOwnershipWithSignature rotates bridge ownership.
	BridgeCommandTransferOwnershipWithSignature
)

// BridgeCommand is an out-of-band instruction queued for a signature
// bridge contract. It is a tagged union over the two supported commands.
type BridgeCommand struct {
	Kind BridgeCommandKind

	// ExecuteProposalWithSignature fields.
	Data      []byte
	Signature []byte

	// TransferOwnershipWithSignature fields.
	PublicKey []byte
	Nonce     uint32
}

// NewExecuteProposalWithSignature builds the ExecuteProposalWithSignature
// variant.
func NewExecuteProposalWithSignature(data, signature []byte) BridgeCommand {
	return BridgeCommand{
		Kind:      BridgeCommandExecuteProposalWithSignature,
		Data:      data,
		Signature: signature,
	}
}

// NewTransferOwnershipWithSignature builds the
// TransferOwnershipWithSignature variant.
func NewTransferOwnershipWithSignature(publicKey []byte, nonce uint32, signature []byte) BridgeCommand {
	return BridgeCommand{
		Kind:      BridgeCommandTransferOwnershipWithSignature,
		PublicKey: publicKey,
		Nonce:     nonce,
		Signature: signature,
	}
}

// bridgeCommandWire is the flat RLP-encodable representation of a
// BridgeCommand. RLP gives us a self-describing, bit-exact round trip
// without hand-rolling a byte format for every variant.
type bridgeCommandWire struct {
	Kind      uint8
	Data      []byte
	Signature []byte
	PublicKey []byte
	Nonce     uint32
}

// Encode serializes the BridgeCommand with RLP.
func (c BridgeCommand) Encode() ([]byte, error) {
	wire := bridgeCommandWire{
		Kind:      uint8(c.Kind),
		Data:      nonNil(c.Data),
		Signature: nonNil(c.Signature),
		PublicKey: nonNil(c.PublicKey),
		Nonce:     c.Nonce,
	}
	return rlp.EncodeToBytes(&wire)
}

// DecodeBridgeCommand parses the bytes produced by Encode.
func DecodeBridgeCommand(b []byte) (BridgeCommand, error) {
	var wire bridgeCommandWire
	if err := rlp.DecodeBytes(b, &wire); err != nil {
		return BridgeCommand{}, fmt.Errorf("proposals: decode bridge command: %w", err)
	}
	switch BridgeCommandKind(wire.Kind) {
	case BridgeCommandExecuteProposalWithSignature:
		return NewExecuteProposalWithSignature(wire.Data, wire.Signature), nil
	case BridgeCommandTransferOwnershipWithSignature:
		return NewTransferOwnershipWithSignature(wire.PublicKey, wire.Nonce, wire.Signature), nil
	default:
		return BridgeCommand{}, fmt.Errorf("proposals: unknown bridge command tag %d", wire.Kind)
	}
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
