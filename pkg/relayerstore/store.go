// Package relayerstore defines the durable persistence contracts the
// relayer core depends on: block cursors, an event-hash dedup set, the
// leaf/ciphertext caches, a FIFO queue store, and a proposal store. Two
// backings are provided: pebblestore (an embedded on-disk KV database) and
// memstore (an in-memory map, for tests).
package relayerstore

import "github.com/webb-tools/relayer-core/pkg/proposals"

// HistoryStore stores and retrieves the last-processed block number for a
// given key. Keys and cursors are created lazily on first read and are
// never deleted by the core.
type HistoryStore interface {
	// SetLastBlockNumber sets the new block number for key and returns the
	// previous value. Writes are atomic per key.
	SetLastBlockNumber(key proposals.HistoryStoreKey, blockNumber uint64) (uint64, error)
	// GetLastBlockNumber returns the last block number for key, or
	// defaultBlockNumber if the key has never been written.
	GetLastBlockNumber(key proposals.HistoryStoreKey, defaultBlockNumber uint64) (uint64, error)
}

// GetLastBlockNumberOrDefault is GetLastBlockNumber with a default block
// number of 1, the relayer's conventional "never synced" sentinel.
func GetLastBlockNumberOrDefault(s HistoryStore, key proposals.HistoryStoreKey) (uint64, error) {
	return s.GetLastBlockNumber(key, 1)
}

// EventHashStore is a presence set keyed by event hash, used to mark
// events as handled without storing the event itself. StoreEvent is
// idempotent; ContainsEvent reflects any previously-committed StoreEvent.
type EventHashStore interface {
	StoreEvent(eventHash []byte) error
	ContainsEvent(eventHash []byte) (bool, error)
	DeleteEvent(eventHash []byte) error
}

// IndexedBytes pairs a leaf/ciphertext with its insertion index. Within a
// single HistoryStoreKey, re-inserting the same index overwrites the
// previous value.
type IndexedBytes struct {
	Index uint32
	Bytes []byte
}

// LeafCacheStore caches merkle leaves per HistoryStoreKey, returned by
// GetLeaves in ascending index order, alongside the block number of the
// last deposit observed for that key.
type LeafCacheStore interface {
	HistoryStore
	EventHashStore
	GetLeaves(key proposals.HistoryStoreKey) ([]IndexedBytes, error)
	InsertLeaves(key proposals.HistoryStoreKey, leaves []IndexedBytes) error
	GetLastDepositBlockNumber(key proposals.HistoryStoreKey) (uint64, error)
	InsertLastDepositBlockNumber(key proposals.HistoryStoreKey, blockNumber uint64) (uint64, error)
}

// EncryptedOutputCacheStore is LeafCacheStore's sibling for VAnchor
// encrypted outputs.
type EncryptedOutputCacheStore interface {
	HistoryStore
	EventHashStore
	GetEncryptedOutput(key proposals.HistoryStoreKey) ([]IndexedBytes, error)
	InsertEncryptedOutput(key proposals.HistoryStoreKey, outputs []IndexedBytes) error
	GetLastDepositBlockNumberForEncryptedOutput(key proposals.HistoryStoreKey) (uint64, error)
	InsertLastDepositBlockNumberForEncryptedOutput(key proposals.HistoryStoreKey, blockNumber uint64) (uint64, error)
}

// QueueStore is a FIFO queue keyed by QueueKey.Name, holding items of any
// serializable type. DequeueItem is destructive: once an item is dequeued
// it is gone, even if the caller later fails to process it (see
// DESIGN.md's discussion of dequeue destructiveness).
type QueueStore[Item any] interface {
	EnqueueItem(key proposals.QueueKey, item Item) error
	DequeueItem(key proposals.QueueKey) (Item, bool, error)
	PeekItem(key proposals.QueueKey) (Item, bool, error)
	HasItem(key proposals.QueueKey) (bool, error)
	RemoveItem(key proposals.QueueKey) (Item, bool, error)
}

// ProposalStore inserts and removes proposals, keyed by the hash of their
// data.
type ProposalStore interface {
	InsertProposal(dataHash []byte, proposal []byte) error
	RemoveProposal(dataHash []byte) ([]byte, bool, error)
}

// WatcherStore is the minimal store surface an EventWatcher needs.
type WatcherStore interface {
	HistoryStore
	EventHashStore
}
