package pebblestore

import "github.com/webb-tools/relayer-core/pkg/proposals"

// BridgeCommandCodec adapts proposals.BridgeCommand's own Encode/Decode
// methods to the Codec interface, for use with NewQueueStore.
type BridgeCommandCodec struct{}

// Encode implements Codec.
func (BridgeCommandCodec) Encode(item proposals.BridgeCommand) ([]byte, error) {
	return item.Encode()
}

// Decode implements Codec.
func (BridgeCommandCodec) Decode(data []byte) (proposals.BridgeCommand, error) {
	return proposals.DecodeBridgeCommand(data)
}

var _ Codec[proposals.BridgeCommand] = BridgeCommandCodec{}
