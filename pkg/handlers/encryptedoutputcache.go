package handlers

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/webb-tools/relayer-core/pkg/proposals"
	"github.com/webb-tools/relayer-core/pkg/relayerstore"
	"github.com/webb-tools/relayer-core/pkg/watcher"
)

// EncryptedOutputEvent is a VAnchor transaction event carrying the
// ciphertexts assigned to two consecutive leaf indices, mirroring the
// source relayer's substrate VAnchor transaction handler.
type EncryptedOutputEvent struct {
	EncryptedOutput1 []byte
	EncryptedOutput2 []byte
	FirstIndex       uint32
}

// EncryptedOutputCacheHandler caches VAnchor encrypted outputs so dApp
// clients can recover note ciphertexts without replaying chain history.
type EncryptedOutputCacheHandler struct {
	ResourceID proposals.ResourceId
	Store      relayerstore.EncryptedOutputCacheStore
}

// NewEncryptedOutputCacheHandler builds a handler caching encrypted
// outputs for resourceID into store.
func NewEncryptedOutputCacheHandler(resourceID proposals.ResourceId, store relayerstore.EncryptedOutputCacheStore) *EncryptedOutputCacheHandler {
	return &EncryptedOutputCacheHandler{ResourceID: resourceID, Store: store}
}

// HandleEvent implements watcher.EventHandler[EncryptedOutputEvent].
func (h *EncryptedOutputCacheHandler) HandleEvent(ctx context.Context, _ relayerstore.WatcherStore, _ watcher.WatchableContract, event watcher.DecodedEvent[EncryptedOutputEvent]) error {
	hash := eventHash(h.ResourceID, event.BlockNumber, event.LogIndex)

	already, err := h.Store.ContainsEvent(hash)
	if err != nil {
		return fmt.Errorf("encrypted output cache: checking dedup set: %w", err)
	}
	if already {
		log.Info("encrypted output cache: event already handled, skipping", "resourceId", h.ResourceID.String())
		return nil
	}

	key := proposals.NewResourceIDHistoryStoreKey(h.ResourceID)
	outputs := []relayerstore.IndexedBytes{
		{Index: event.Event.FirstIndex, Bytes: event.Event.EncryptedOutput1},
		{Index: event.Event.FirstIndex + 1, Bytes: event.Event.EncryptedOutput2},
	}
	if err := h.Store.InsertEncryptedOutput(key, outputs); err != nil {
		return fmt.Errorf("encrypted output cache: inserting outputs: %w", err)
	}
	if _, err := h.Store.InsertLastDepositBlockNumberForEncryptedOutput(key, event.BlockNumber); err != nil {
		return fmt.Errorf("encrypted output cache: recording deposit block: %w", err)
	}

	if err := h.Store.StoreEvent(hash); err != nil {
		return fmt.Errorf("encrypted output cache: marking event handled: %w", err)
	}
	log.Debug("encrypted output cache: stored outputs", "resourceId", h.ResourceID.String(), "firstIndex", event.Event.FirstIndex, "block", event.BlockNumber)
	return nil
}

var _ watcher.EventHandler[EncryptedOutputEvent] = (*EncryptedOutputCacheHandler)(nil)
