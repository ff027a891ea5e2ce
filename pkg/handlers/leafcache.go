// Package handlers implements the event handlers the relayer ships out of
// the box: caching merkle leaves and VAnchor encrypted outputs for
// downstream dApp consumption, grounded on the source relayer's
// leaf/encrypted-output watchers.
package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/webb-tools/relayer-core/pkg/proposals"
	"github.com/webb-tools/relayer-core/pkg/relayerstore"
	"github.com/webb-tools/relayer-core/pkg/watcher"
)

// DepositEvent is the shape every deposit-style event handled by the cache
// handlers must provide: the inserted leaf (or ciphertext) and the index
// the contract assigned it.
type DepositEvent struct {
	Leaf      []byte
	LeafIndex uint32
}

// eventHash derives the dedup key for one deposit event: the resource id
// plus block number and log index uniquely identify it, per the core's
// (resource_id, block, log_index) dedup invariant.
func eventHash(resourceID proposals.ResourceId, blockNumber uint64, logIndex uint32) []byte {
	h := sha256.New()
	h.Write(resourceID[:])
	var buf [12]byte
	binary.BigEndian.PutUint64(buf[:8], blockNumber)
	binary.BigEndian.PutUint32(buf[8:], logIndex)
	h.Write(buf[:])
	return h.Sum(nil)
}

// LeafCacheHandler caches each deposit's leaf under the watcher's resource
// id, so dApp clients can rebuild merkle proofs without replaying chain
// history themselves.
type LeafCacheHandler struct {
	ResourceID proposals.ResourceId
	Store      relayerstore.LeafCacheStore
}

// NewLeafCacheHandler builds a handler caching leaves for resourceID into
// store.
func NewLeafCacheHandler(resourceID proposals.ResourceId, store relayerstore.LeafCacheStore) *LeafCacheHandler {
	return &LeafCacheHandler{ResourceID: resourceID, Store: store}
}

// HandleEvent implements watcher.EventHandler[DepositEvent].
func (h *LeafCacheHandler) HandleEvent(ctx context.Context, _ relayerstore.WatcherStore, _ watcher.WatchableContract, event watcher.DecodedEvent[DepositEvent]) error {
	hash := eventHash(h.ResourceID, event.BlockNumber, event.LogIndex)

	already, err := h.Store.ContainsEvent(hash)
	if err != nil {
		return fmt.Errorf("leaf cache: checking dedup set: %w", err)
	}
	if already {
		log.Info("leaf cache: event already handled, skipping", "resourceId", h.ResourceID.String(), "index", event.Event.LeafIndex)
		return nil
	}

	key := proposals.NewResourceIDHistoryStoreKey(h.ResourceID)
	if err := h.Store.InsertLeaves(key, []relayerstore.IndexedBytes{{Index: event.Event.LeafIndex, Bytes: event.Event.Leaf}}); err != nil {
		return fmt.Errorf("leaf cache: inserting leaf: %w", err)
	}
	if _, err := h.Store.InsertLastDepositBlockNumber(key, event.BlockNumber); err != nil {
		return fmt.Errorf("leaf cache: recording deposit block: %w", err)
	}

	if err := h.Store.StoreEvent(hash); err != nil {
		return fmt.Errorf("leaf cache: marking event handled: %w", err)
	}
	log.Debug("leaf cache: stored leaf", "resourceId", h.ResourceID.String(), "index", event.Event.LeafIndex, "block", event.BlockNumber)
	return nil
}

var _ watcher.EventHandler[DepositEvent] = (*LeafCacheHandler)(nil)
