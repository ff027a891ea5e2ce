package memstore

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/webb-tools/relayer-core/pkg/proposals"
	"github.com/webb-tools/relayer-core/pkg/relayerstore"
)

func TestHistoryStoreDefaultsAndMonotonicWrites(t *testing.T) {
	s := New()
	key := proposals.NewBlockHistoryStoreKey(5)

	v, err := s.GetLastBlockNumber(key, 42)
	require.NoError(t, err)
	require.Equal(t, uint64(42), v, "lazily created, default returned on first read")

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
	s := New()
	h := []byte("event-hash")

	ok, err := s.ContainsEvent(h)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.StoreEvent(h))
	require.NoError(t, s.StoreEvent(h)) // idempotent

	ok, err = s.ContainsEvent(h)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.DeleteEvent(h))
	ok, err = s.ContainsEvent(h)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLeafCacheAscendingIndexOrderAndOverwrite(t *testing.T) {
	s := New()
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

func TestLastDepositBlockNumber(t *testing.T) {
	s := New()
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

func TestProposalStore(t *testing.T) {
	s := New()
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

func TestQueueStoreFIFO(t *testing.T) {
	q := NewQueueStore[string]()
	key := proposals.QueueKey{Name: "test-queue"}

	has, err := q.HasItem(key)
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, q.EnqueueItem(key, "one"))
	require.NoError(t, q.EnqueueItem(key, "two"))

	peeked, ok, err := q.PeekItem(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "one", peeked)

	got, ok, err := q.DequeueItem(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "one", got)

	got, ok, err = q.DequeueItem(key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "two", got)

	_, ok, err = q.DequeueItem(key)
	require.NoError(t, err)
	require.False(t, ok)
}
