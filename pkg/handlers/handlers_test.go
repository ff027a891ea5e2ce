package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/webb-tools/relayer-core/pkg/proposals"
	"github.com/webb-tools/relayer-core/pkg/relayerstore/memstore"
	"github.com/webb-tools/relayer-core/pkg/watcher"
)

func testResourceID() proposals.ResourceId {
	var addr [20]byte
	for i := range addr {
		addr[i] = byte(i)
	}
	return proposals.NewResourceId(
		proposals.NewContractAddressTargetSystem(addr),
		proposals.NewEvmTypedChainId(5),
	)
}

func TestLeafCacheHandlerStoresLeafAndDedupsOnReplay(t *testing.T) {
	store := memstore.New()
	resourceID := testResourceID()
	h := NewLeafCacheHandler(resourceID, store)

	event := watcher.DecodedEvent[DepositEvent]{
		Event:       DepositEvent{Leaf: []byte("leaf-bytes"), LeafIndex: 3},
		BlockNumber: 42,
		LogIndex:    0,
	}

	require.NoError(t, h.HandleEvent(context.Background(), nil, nil, event))

	key := proposals.NewResourceIDHistoryStoreKey(resourceID)
	leaves, err := store.GetLeaves(key)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	require.Equal(t, uint32(3), leaves[0].Index)
	require.Equal(t, []byte("leaf-bytes"), leaves[0].Bytes)

	depositBlock, err := store.GetLastDepositBlockNumber(key)
	require.NoError(t, err)
	require.Equal(t, uint64(42), depositBlock)

	// Re-delivery of the same event must be a no-op: the dedup set skips
	// re-insertion even though nothing prevents the watcher from handing
	// the same event to the handler twice.
	event.Event.Leaf = []byte("different-bytes-should-not-be-stored")
	require.NoError(t, h.HandleEvent(context.Background(), nil, nil, event))

	leaves, err = store.GetLeaves(key)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	require.Equal(t, []byte("leaf-bytes"), leaves[0].Bytes)
}

func TestEncryptedOutputCacheHandlerStoresBothOutputs(t *testing.T) {
	store := memstore.New()
	resourceID := testResourceID()
	h := NewEncryptedOutputCacheHandler(resourceID, store)

	event := watcher.DecodedEvent[EncryptedOutputEvent]{
		Event: EncryptedOutputEvent{
			EncryptedOutput1: []byte("ct-1"),
			EncryptedOutput2: []byte("ct-2"),
			FirstIndex:       10,
		},
		BlockNumber: 7,
		LogIndex:    1,
	}

	require.NoError(t, h.HandleEvent(context.Background(), nil, nil, event))

	key := proposals.NewResourceIDHistoryStoreKey(resourceID)
	outputs, err := store.GetEncryptedOutput(key)
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	require.Equal(t, uint32(10), outputs[0].Index)
	require.Equal(t, []byte("ct-1"), outputs[0].Bytes)
	require.Equal(t, uint32(11), outputs[1].Index)
	require.Equal(t, []byte("ct-2"), outputs[1].Bytes)
}
