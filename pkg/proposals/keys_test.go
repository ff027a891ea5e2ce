package proposals

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHistoryStoreKeyRoundTrip(t *testing.T) {
	blockKey := NewBlockHistoryStoreKey(5)
	b := blockKey.Bytes()
	require.Len(t, b, 4)
	got, err := DecodeHistoryStoreKey(b)
	require.NoError(t, err)
	require.Equal(t, blockKey, got)
	require.Equal(t, uint32(5), got.ChainID())

	var addr [20]byte
	ts := NewContractAddressTargetSystem(addr)
	chain := NewEvmTypedChainId(7)
	rid := NewResourceId(ts, chain)
	ridKey := NewResourceIDHistoryStoreKey(rid)
	b2 := ridKey.Bytes()
	require.Len(t, b2, ResourceIdLen)
	got2, err := DecodeHistoryStoreKey(b2)
	require.NoError(t, err)
	require.Equal(t, ridKey, got2)
	require.Equal(t, uint32(7), got2.ChainID())
}

func TestDecodeHistoryStoreKeyInvalidLength(t *testing.T) {
	_, err := DecodeHistoryStoreKey([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestBridgeKeyFromResourceId(t *testing.T) {
	var addr [20]byte
	ts := NewContractAddressTargetSystem(addr)
	chain := NewEvmTypedChainId(5)
	rid := NewResourceId(ts, chain)

	key, err := BridgeKeyFromResourceId(rid)
	require.NoError(t, err)
	require.Equal(t, chain, key.ChainID)
}

func TestQueueKeyForBridgeKey(t *testing.T) {
	key := NewBridgeKey(NewEvmTypedChainId(5))
	qk := NewQueueKeyFromBridgeKey(key)
	require.NotEmpty(t, qk.Name)
	require.Nil(t, qk.ItemKey)

	other := NewBridgeKey(NewSubstrateTypedChainId(5))
	qk2 := NewQueueKeyFromBridgeKey(other)
	require.NotEqual(t, qk.Name, qk2.Name, "different ecosystems must not collide")
}
