// Package memstore is the in-memory, volatile backing for
// pkg/relayerstore, mirroring the teacher's own lightweight test fakes
// (e.g. eth/filters/test_backend.go's TestBackend). It is used by the
// relayer's own tests and is suitable for any caller that does not need
// durability across restarts.
package memstore

import (
	"sort"
	"sync"

	"github.com/webb-tools/relayer-core/pkg/proposals"
	"github.com/webb-tools/relayer-core/pkg/relayerstore"
)

// Store is a coarse-locked, map-backed implementation of HistoryStore,
// EventHashStore, LeafCacheStore, EncryptedOutputCacheStore, and
// ProposalStore.
type Store struct {
	mu sync.RWMutex

	blocks               map[string]uint64
	events               map[string]struct{}
	leaves               map[string]map[uint32][]byte
	leafDepositBlocks    map[string]uint64
	encOutputs           map[string]map[uint32][]byte
	encOutputDepositBlks map[string]uint64
	proposals            map[string][]byte
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		blocks:               make(map[string]uint64),
		events:               make(map[string]struct{}),
		leaves:               make(map[string]map[uint32][]byte),
		leafDepositBlocks:    make(map[string]uint64),
		encOutputs:           make(map[string]map[uint32][]byte),
		encOutputDepositBlks: make(map[string]uint64),
		proposals:            make(map[string][]byte),
	}
}

func keyString(key proposals.HistoryStoreKey) string {
	return string(key.Bytes())
}

// SetLastBlockNumber implements relayerstore.HistoryStore.
func (s *Store) SetLastBlockNumber(key proposals.HistoryStoreKey, blockNumber uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyString(key)
	prev := s.blocks[k]
	s.blocks[k] = blockNumber
	return prev, nil
}

// GetLastBlockNumber implements relayerstore.HistoryStore.
func (s *Store) GetLastBlockNumber(key proposals.HistoryStoreKey, defaultBlockNumber uint64) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.blocks[keyString(key)]; ok {
		return v, nil
	}
	return defaultBlockNumber, nil
}

// StoreEvent implements relayerstore.EventHashStore.
func (s *Store) StoreEvent(eventHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[string(eventHash)] = struct{}{}
	return nil
}

// ContainsEvent implements relayerstore.EventHashStore.
func (s *Store) ContainsEvent(eventHash []byte) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.events[string(eventHash)]
	return ok, nil
}

// DeleteEvent implements relayerstore.EventHashStore.
func (s *Store) DeleteEvent(eventHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.events, string(eventHash))
	return nil
}

func sortedIndexed(m map[uint32][]byte) []relayerstore.IndexedBytes {
	out := make([]relayerstore.IndexedBytes, 0, len(m))
	for idx, b := range m {
		out = append(out, relayerstore.IndexedBytes{Index: idx, Bytes: b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// GetLeaves implements relayerstore.LeafCacheStore.
func (s *Store) GetLeaves(key proposals.HistoryStoreKey) ([]relayerstore.IndexedBytes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIndexed(s.leaves[keyString(key)]), nil
}

// InsertLeaves implements relayerstore.LeafCacheStore.
func (s *Store) InsertLeaves(key proposals.HistoryStoreKey, leaves []relayerstore.IndexedBytes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyString(key)
	m, ok := s.leaves[k]
	if !ok {
		m = make(map[uint32][]byte)
		s.leaves[k] = m
	}
	for _, l := range leaves {
		m[l.Index] = l.Bytes
	}
	return nil
}

// GetLastDepositBlockNumber implements relayerstore.LeafCacheStore.
func (s *Store) GetLastDepositBlockNumber(key proposals.HistoryStoreKey) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leafDepositBlocks[keyString(key)], nil
}

// InsertLastDepositBlockNumber implements relayerstore.LeafCacheStore.
func (s *Store) InsertLastDepositBlockNumber(key proposals.HistoryStoreKey, blockNumber uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyString(key)
	prev := s.leafDepositBlocks[k]
	s.leafDepositBlocks[k] = blockNumber
	return prev, nil
}

// GetEncryptedOutput implements relayerstore.EncryptedOutputCacheStore.
func (s *Store) GetEncryptedOutput(key proposals.HistoryStoreKey) ([]relayerstore.IndexedBytes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIndexed(s.encOutputs[keyString(key)]), nil
}

// InsertEncryptedOutput implements relayerstore.EncryptedOutputCacheStore.
func (s *Store) InsertEncryptedOutput(key proposals.HistoryStoreKey, outputs []relayerstore.IndexedBytes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyString(key)
	m, ok := s.encOutputs[k]
	if !ok {
		m = make(map[uint32][]byte)
		s.encOutputs[k] = m
	}
	for _, o := range outputs {
		m[o.Index] = o.Bytes
	}
	return nil
}

// GetLastDepositBlockNumberForEncryptedOutput implements
// relayerstore.EncryptedOutputCacheStore.
func (s *Store) GetLastDepositBlockNumberForEncryptedOutput(key proposals.HistoryStoreKey) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.encOutputDepositBlks[keyString(key)], nil
}

// InsertLastDepositBlockNumberForEncryptedOutput implements
// relayerstore.EncryptedOutputCacheStore.
func (s *Store) InsertLastDepositBlockNumberForEncryptedOutput(key proposals.HistoryStoreKey, blockNumber uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := keyString(key)
	prev := s.encOutputDepositBlks[k]
	s.encOutputDepositBlks[k] = blockNumber
	return prev, nil
}

// InsertProposal implements relayerstore.ProposalStore.
func (s *Store) InsertProposal(dataHash []byte, proposal []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proposals[string(dataHash)] = proposal
	return nil
}

// RemoveProposal implements relayerstore.ProposalStore.
func (s *Store) RemoveProposal(dataHash []byte) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.proposals[string(dataHash)]
	if ok {
		delete(s.proposals, string(dataHash))
	}
	return v, ok, nil
}

var (
	_ relayerstore.HistoryStore              = (*Store)(nil)
	_ relayerstore.EventHashStore             = (*Store)(nil)
	_ relayerstore.LeafCacheStore             = (*Store)(nil)
	_ relayerstore.EncryptedOutputCacheStore  = (*Store)(nil)
	_ relayerstore.ProposalStore              = (*Store)(nil)
)
