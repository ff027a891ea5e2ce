package pebblestore

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/webb-tools/relayer-core/pkg/proposals"
	"github.com/webb-tools/relayer-core/pkg/relayerstore"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestHistoryStoreDefaultsAndMonotonicWrites(t *testing.T) {
	s := openTestStore(t)
	key := proposals.NewBlockHistoryStoreKey(5)

	v, err := s.GetLastBlockNumber(key, 42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), v)

	prev, err := s.SetLastBlockNumber(key, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(0), prev)

	prev, err = s.SetLastBlockNumber(key, 150)
	require.NoError(t, err)
	require.Equal(t, uint64(100), prev)

	v, err = s.GetLastBlockNumber(key, 42)
	require.NoError(t, err)
	require.Equal(t, uint64(150), v)
}

func TestEventHashStoreIdempotence(t *testing.T) {
	s := openTestStore(t)
	h := []byte("event-hash")

	ok, err := s.ContainsEvent(h)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.StoreEvent(h))
	require.NoError(t, s.StoreEvent(h))

	ok, err = s.ContainsEvent(h)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.DeleteEvent(h))
	ok, err = s.ContainsEvent(h)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLeafCacheAscendingIndexOrderAndOverwrite(t *testing.T) {
	s := openTestStore(t)
	key := proposals.NewBlockHistoryStoreKey(1)

	require.NoError(t, s.InsertLeaves(key, []relayerstore.IndexedBytes{
		{Index: 2, Bytes: []byte("b")},
		{Index: 0, Bytes: []byte("a")},
	}))
	require.NoError(t, s.InsertLeaves(key, []relayerstore.IndexedBytes{
		{Index: 0, Bytes: []byte("a-overwritten")},
	}))

	leaves, err := s.GetLeaves(key)
	require.NoError(t, err)
	require.Equal(t, []relayerstore.IndexedBytes{
		{Index: 0, Bytes: []byte("a-overwritten")},
		{Index: 2, Bytes: []byte("b")},
	}, leaves)
}

func TestLeafCacheIsolatedAcrossKeys(t *testing.T) {
	s := openTestStore(t)
	k1 := proposals.NewBlockHistoryStoreKey(1)
	k2 := proposals.NewBlockHistoryStoreKey(2)

	require.NoError(t, s.InsertLeaves(k1, []relayerstore.IndexedBytes{{Index: 0, Bytes: []byte("k1")}}))
	require.NoError(t, s.InsertLeaves(k2, []relayerstore.IndexedBytes{{Index: 0, Bytes: []byte("k2")}}))

	l1, err := s.GetLeaves(k1)
	require.NoError(t, err)
	require.Equal(t, []relayerstore.IndexedBytes{{Index: 0, Bytes: []byte("k1")}}, l1)

	l2, err := s.GetLeaves(k2)
	require.NoError(t, err)
	require.Equal(t, []relayerstore.IndexedBytes{{Index: 0, Bytes: []byte("k2")}}, l2)
}

func TestLastDepositBlockNumber(t *testing.T) {
	s := openTestStore(t)
	key := proposals.NewBlockHistoryStoreKey(1)

	v, err := s.GetLastDepositBlockNumber(key)
	require.NoError(t, err)
	require.Equal(t, uint64(0), v)

	prev, err := s.InsertLastDepositBlockNumber(key, 10)
	require.NoError(t, err)
	require.Equal(t, uint64(0), prev)

	v, err = s.GetLastDepositBlockNumber(key)
	require.NoError(t, err)
	require.Equal(t, uint64(10), v)
}

func TestEncryptedOutputCache(t *testing.T) {
	s := openTestStore(t)
	key := proposals.NewBlockHistoryStoreKey(1)

	require.NoError(t, s.InsertEncryptedOutput(key, []relayerstore.IndexedBytes{{Index: 1, Bytes: []byte("ct")}}))
	out, err := s.GetEncryptedOutput(key)
	require.NoError(t, err)
	require.Equal(t, []relayerstore.IndexedBytes{{Index: 1, Bytes: []byte("ct")}}, out)

	prev, err := s.InsertLastDepositBlockNumberForEncryptedOutput(key, 7)
	require.NoError(t, err)
	require.Equal(t, uint64(0), prev)

	v, err := s.GetLastDepositBlockNumberForEncryptedOutput(key)
	require.NoError(t, err)
	require.Equal(t, uint64(7), v)
}

func TestProposalStore(t *testing.T) {
	s := openTestStore(t)
	hash := []byte("hash")
	require.NoError(t, s.InsertProposal(hash, []byte("proposal-bytes")))

	got, ok, err := s.RemoveProposal(hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("proposal-bytes"), got)

	_, ok, err = s.RemoveProposal(hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestQueueStoreFIFOWithBridgeCommandCodec(t *testing.T) {
	s := openTestStore(t)
	q := NewQueueStore[proposals.BridgeCommand](s.db, BridgeCommandCodec{})
	key := proposals.QueueKey{Name: "test-queue"}

	has, err := q.HasItem(key)
	require.NoError(t, err)
	require.False(t, has)

	one := proposals.NewExecuteProposalWithSignature([]byte("data-1"), []byte("sig-1"))
	two := proposals.NewExecuteProposalWithSignature([]byte("data-2"), []byte("sig-2"))

	require.NoError(t, q.EnqueueItem(key, one))
	require.NoError(t, q.EnqueueItem(key, two))

	peeked, ok, err := q.PeekItem(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, one, peeked)

	got, ok, err := q.DequeueItem(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, one, got)

	got, ok, err = q.DequeueItem(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, two, got)

	_, ok, err = q.DequeueItem(key)
	require.NoError(t, err)
	require.False(t, ok)
}
