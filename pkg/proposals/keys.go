package proposals

import (
	"encoding/binary"
	"fmt"
)

// HistoryStoreKeyKind discriminates the HistoryStoreKey tagged union.
type HistoryStoreKeyKind uint8

const (
	// HistoryStoreKeyBlock namespaces a per-chain block cursor.
	HistoryStoreKeyBlock HistoryStoreKeyKind = iota
	// HistoryStoreKeyResourceID namespaces a per-resource cursor or cache.
	HistoryStoreKeyResourceID
)

// HistoryStoreKey uniquely namespaces cursors and caches kept by the
// durable stores. It has two variants: a bare chain id (used for
// chain-wide cursors) or a ResourceId (used for per-contract cursors and
// caches).
type HistoryStoreKey struct {
	kind       HistoryStoreKeyKind
	chainID    uint32
	resourceID ResourceId
}

// NewBlockHistoryStoreKey builds the Block variant of HistoryStoreKey.
func NewBlockHistoryStoreKey(chainID uint32) HistoryStoreKey {
	return HistoryStoreKey{kind: HistoryStoreKeyBlock, chainID: chainID}
}

// NewResourceIDHistoryStoreKey builds the ResourceId variant of HistoryStoreKey.
func NewResourceIDHistoryStoreKey(resourceID ResourceId) HistoryStoreKey {
	return HistoryStoreKey{kind: HistoryStoreKeyResourceID, resourceID: resourceID}
}

// Kind reports which variant this key holds.
func (k HistoryStoreKey) Kind() HistoryStoreKeyKind { return k.kind }

// ChainID returns the chain id this key is for, whichever variant it is.
func (k HistoryStoreKey) ChainID() uint32 {
	if k.kind == HistoryStoreKeyBlock {
		return k.chainID
	}
	chain, err := k.resourceID.TypedChainId()
	if err != nil {
		return 0
	}
	return chain.UnderlyingChainID()
}

// Bytes encodes the key to storage: the 4-byte big-endian chain id for
// Block, or the raw 32-byte resource id for ResourceId.
func (k HistoryStoreKey) Bytes() []byte {
	switch k.kind {
	case HistoryStoreKeyBlock:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, k.chainID)
		return buf
	case HistoryStoreKeyResourceID:
		b := k.resourceID.Bytes()
		out := make([]byte, len(b))
		copy(out, b[:])
		return out
	default:
		return nil
	}
}

// DecodeHistoryStoreKey parses the bytes produced by Bytes. The variant is
// determined unambiguously by length: 4 bytes is always Block, 32 bytes is
// always ResourceId.
func DecodeHistoryStoreKey(b []byte) (HistoryStoreKey, error) {
	switch len(b) {
	case 4:
		return NewBlockHistoryStoreKey(binary.BigEndian.Uint32(b)), nil
	case ResourceIdLen:
		var rid ResourceId
		copy(rid[:], b)
		return NewResourceIDHistoryStoreKey(rid), nil
	default:
		return HistoryStoreKey{}, fmt.Errorf("proposals: invalid history store key length %d", len(b))
	}
}

func (k HistoryStoreKey) String() string {
	switch k.kind {
	case HistoryStoreKeyBlock:
		return fmt.Sprintf("Block(%d)", k.chainID)
	default:
		return fmt.Sprintf("ResourceId(ChainId %d)", k.ChainID())
	}
}

// BridgeKey is a unique key used for sending and receiving commands to a
// per-chain signature bridge. It wraps a TypedChainId.
type BridgeKey struct {
	ChainID TypedChainId
}

// NewBridgeKey builds a BridgeKey from a TypedChainId.
func NewBridgeKey(chainID TypedChainId) BridgeKey {
	return BridgeKey{ChainID: chainID}
}

// BridgeKeyFromResourceId derives a BridgeKey from a ResourceId's chain half.
func BridgeKeyFromResourceId(resourceID ResourceId) (BridgeKey, error) {
	chain, err := resourceID.TypedChainId()
	if err != nil {
		return BridgeKey{}, err
	}
	return NewBridgeKey(chain), nil
}

func (k BridgeKey) String() string {
	return fmt.Sprintf("Bridge(%+v)", k.ChainID)
}

// QueueKeyLen is the fixed size of a QueueKey's optional direct-access key.
const QueueKeyLen = 64

// QueueKey identifies a FIFO queue partition by a human-readable name,
// with an optional 64-byte direct-access key for targeted removal.
type QueueKey struct {
	// Name is used as the key prefix/partition for FIFO ordering.
	Name string
	// ItemKey, when non-nil, allows direct access to a specific item.
	ItemKey *[QueueKeyLen]byte
}

// QueueNameForBridgeKey is the conventional queue name for bridge commands
// targeting a given chain.
func QueueNameForBridgeKey(key BridgeKey) string {
	return fmt.Sprintf("bridge-commands/%d/%d", key.ChainID.Kind(), key.ChainID.UnderlyingChainID())
}

// NewQueueKeyFromBridgeKey builds the QueueKey used by the bridge command
// watcher for a given chain's signature bridge.
func NewQueueKeyFromBridgeKey(key BridgeKey) QueueKey {
	return QueueKey{Name: QueueNameForBridgeKey(key)}
}
