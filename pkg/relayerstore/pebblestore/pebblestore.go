// Package pebblestore is the embedded, on-disk backing for
// pkg/relayerstore, built on github.com/cockroachdb/pebble. Each logical
// table (block cursors, event hashes, leaf cache, encrypted-output cache,
// proposals, queues) lives in its own disjoint key prefix within the same
// database.
package pebblestore

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/log"
	"github.com/webb-tools/relayer-core/pkg/proposals"
	"github.com/webb-tools/relayer-core/pkg/relayerstore"
)

const (
	prefixBlock        = "blk/"
	prefixEvent        = "evt/"
	prefixLeaf         = "leaf/"
	prefixLeafDeposit  = "leafdep/"
	prefixEncOutput    = "enc/"
	prefixEncDeposit   = "encdep/"
	prefixProposal     = "prop/"
	prefixQueueHead    = "q/head/"
	prefixQueueTail    = "q/tail/"
	prefixQueueItem    = "q/item/"
)

// Store implements relayerstore.HistoryStore, EventHashStore,
// LeafCacheStore, EncryptedOutputCacheStore, and ProposalStore on top of a
// single pebble database. Methods take a coarse per-store lock to make
// read-modify-write sequences (e.g. "set and return previous value")
// atomic; pebble's own per-call atomicity is not enough for that on its
// own.
type Store struct {
	mu sync.Mutex
	db *pebble.DB
}

// Open opens (creating if necessary) a pebble database at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebblestore: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// BridgeQueue returns the BridgeCommand FIFO queue store backed by this
// same database, for the bridge command watcher.
func (s *Store) BridgeQueue() *QueueStore[proposals.BridgeCommand] {
	return NewQueueStore[proposals.BridgeCommand](s.db, BridgeCommandCodec{})
}

func (s *Store) get(key []byte) ([]byte, bool, error) {
	v, closer, err := s.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	if cerr := closer.Close(); cerr != nil {
		return nil, false, cerr
	}
	return out, true, nil
}

func (s *Store) set(key, value []byte) error {
	return s.db.Set(key, value, pebble.Sync)
}

func (s *Store) del(key []byte) error {
	return s.db.Delete(key, pebble.Sync)
}

func historyKeyBytes(key proposals.HistoryStoreKey) []byte { return key.Bytes() }

func blockKey(key proposals.HistoryStoreKey) []byte {
	return append([]byte(prefixBlock), historyKeyBytes(key)...)
}

// SetLastBlockNumber implements relayerstore.HistoryStore.
func (s *Store) SetLastBlockNumber(key proposals.HistoryStoreKey, blockNumber uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := blockKey(key)
	prev, ok, err := s.get(k)
	if err != nil {
		return 0, err
	}
	var prevVal uint64
	if ok {
		prevVal = binary.BigEndian.Uint64(prev)
	}
	if ok && blockNumber < prevVal {
		log.Warn("relayer store: cursor moved backwards", "key", key.String(), "from", prevVal, "to", blockNumber)
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, blockNumber)
	if err := s.set(k, buf); err != nil {
		return 0, err
	}
	return prevVal, nil
}

// GetLastBlockNumber implements relayerstore.HistoryStore.
func (s *Store) GetLastBlockNumber(key proposals.HistoryStoreKey, defaultBlockNumber uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok, err := s.get(blockKey(key))
	if err != nil {
		return 0, err
	}
	if !ok {
		return defaultBlockNumber, nil
	}
	return binary.BigEndian.Uint64(v), nil
}

// StoreEvent implements relayerstore.EventHashStore.
func (s *Store) StoreEvent(eventHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(append([]byte(prefixEvent), eventHash...), []byte{1})
}

// ContainsEvent implements relayerstore.EventHashStore.
func (s *Store) ContainsEvent(eventHash []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok, err := s.get(append([]byte(prefixEvent), eventHash...))
	return ok, err
}

// DeleteEvent implements relayerstore.EventHashStore.
func (s *Store) DeleteEvent(eventHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.del(append([]byte(prefixEvent), eventHash...))
}

func leafPrefixFor(prefix string, key proposals.HistoryStoreKey) []byte {
	return append([]byte(prefix), historyKeyBytes(key)...)
}

func indexedKey(prefix string, key proposals.HistoryStoreKey, index uint32) []byte {
	k := leafPrefixFor(prefix, key)
	k = append(k, '/')
	idx := make([]byte, 4)
	binary.BigEndian.PutUint32(idx, index)
	return append(k, idx...)
}

func (s *Store) getIndexed(prefix string, key proposals.HistoryStoreKey) ([]relayerstore.IndexedBytes, error) {
	lower := append(leafPrefixFor(prefix, key), '/')
	upper := append(append([]byte{}, lower...), 0xff, 0xff, 0xff, 0xff, 0xff)
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []relayerstore.IndexedBytes
	for valid := iter.First(); valid; valid = iter.Next() {
		k := iter.Key()
		index := binary.BigEndian.Uint32(k[len(lower):])
		v := make([]byte, len(iter.Value()))
		copy(v, iter.Value())
		out = append(out, relayerstore.IndexedBytes{Index: index, Bytes: v})
	}
	return out, iter.Error()
}

func (s *Store) insertIndexed(prefix string, key proposals.HistoryStoreKey, items []relayerstore.IndexedBytes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, item := range items {
		if err := batch.Set(indexedKey(prefix, key, item.Index), item.Bytes, nil); err != nil {
			return err
		}
	}
	return batch.Commit(pebble.Sync)
}

func depositBlockKey(prefix string, key proposals.HistoryStoreKey) []byte {
	return append([]byte(prefix), historyKeyBytes(key)...)
}

func (s *Store) getDepositBlock(prefix string, key proposals.HistoryStoreKey) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok, err := s.get(depositBlockKey(prefix, key))
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return binary.BigEndian.Uint64(v), nil
}

func (s *Store) setDepositBlock(prefix string, key proposals.HistoryStoreKey, blockNumber uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := depositBlockKey(prefix, key)
	prev, ok, err := s.get(k)
	if err != nil {
		return 0, err
	}
	var prevVal uint64
	if ok {
		prevVal = binary.BigEndian.Uint64(prev)
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, blockNumber)
	if err := s.set(k, buf); err != nil {
		return 0, err
	}
	return prevVal, nil
}

// GetLeaves implements relayerstore.LeafCacheStore.
func (s *Store) GetLeaves(key proposals.HistoryStoreKey) ([]relayerstore.IndexedBytes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getIndexed(prefixLeaf, key)
}

// InsertLeaves implements relayerstore.LeafCacheStore.
func (s *Store) InsertLeaves(key proposals.HistoryStoreKey, leaves []relayerstore.IndexedBytes) error {
	return s.insertIndexed(prefixLeaf, key, leaves)
}

// GetLastDepositBlockNumber implements relayerstore.LeafCacheStore.
func (s *Store) GetLastDepositBlockNumber(key proposals.HistoryStoreKey) (uint64, error) {
	return s.getDepositBlock(prefixLeafDeposit, key)
}

// InsertLastDepositBlockNumber implements relayerstore.LeafCacheStore.
func (s *Store) InsertLastDepositBlockNumber(key proposals.HistoryStoreKey, blockNumber uint64) (uint64, error) {
	return s.setDepositBlock(prefixLeafDeposit, key, blockNumber)
}

// GetEncryptedOutput implements relayerstore.EncryptedOutputCacheStore.
func (s *Store) GetEncryptedOutput(key proposals.HistoryStoreKey) ([]relayerstore.IndexedBytes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getIndexed(prefixEncOutput, key)
}

// InsertEncryptedOutput implements relayerstore.EncryptedOutputCacheStore.
func (s *Store) InsertEncryptedOutput(key proposals.HistoryStoreKey, outputs []relayerstore.IndexedBytes) error {
	return s.insertIndexed(prefixEncOutput, key, outputs)
}

// GetLastDepositBlockNumberForEncryptedOutput implements
// relayerstore.EncryptedOutputCacheStore.
func (s *Store) GetLastDepositBlockNumberForEncryptedOutput(key proposals.HistoryStoreKey) (uint64, error) {
	return s.getDepositBlock(prefixEncDeposit, key)
}

// InsertLastDepositBlockNumberForEncryptedOutput implements
// relayerstore.EncryptedOutputCacheStore.
func (s *Store) InsertLastDepositBlockNumberForEncryptedOutput(key proposals.HistoryStoreKey, blockNumber uint64) (uint64, error) {
	return s.setDepositBlock(prefixEncDeposit, key, blockNumber)
}

// InsertProposal implements relayerstore.ProposalStore.
func (s *Store) InsertProposal(dataHash []byte, proposal []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(append([]byte(prefixProposal), dataHash...), proposal)
}

// RemoveProposal implements relayerstore.ProposalStore.
func (s *Store) RemoveProposal(dataHash []byte) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := append([]byte(prefixProposal), dataHash...)
	v, ok, err := s.get(k)
	if err != nil || !ok {
		return nil, ok, err
	}
	if err := s.del(k); err != nil {
		return nil, false, err
	}
	return v, true, nil
}

var (
	_ relayerstore.HistoryStore             = (*Store)(nil)
	_ relayerstore.EventHashStore            = (*Store)(nil)
	_ relayerstore.LeafCacheStore            = (*Store)(nil)
	_ relayerstore.EncryptedOutputCacheStore = (*Store)(nil)
	_ relayerstore.ProposalStore             = (*Store)(nil)
)
