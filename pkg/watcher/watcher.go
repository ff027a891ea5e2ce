// Package watcher implements the per-contract event watcher loop: it
// advances a persistent cursor across confirmed block ranges, decodes
// typed events, and fans each one out to every registered handler,
// advancing the cursor only once at least one handler succeeds.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/webb-tools/relayer-core/pkg/proposals"
	"github.com/webb-tools/relayer-core/pkg/relayercontext"
	"github.com/webb-tools/relayer-core/pkg/relayererrors"
	"github.com/webb-tools/relayer-core/pkg/relayerstore"
	"github.com/webb-tools/relayer-core/pkg/retry"
)

// handlerRetryDelay and handlerMaxRetries are the relayer's fixed
// handler-retry contract: constant 100ms backoff, 5 retries.
const (
	handlerRetryDelay = 100 * time.Millisecond
	handlerMaxRetries = 5
)

// supervisorRestartDelay is the outer constant backoff a watcher task is
// restarted with after a transient or restart-worthy failure.
const supervisorRestartDelay = 1 * time.Second

// WatchableContract is the ephemeral, per-watcher configuration for one
// contract: where it lives, how far back it starts, and how the watcher
// paces itself.
type WatchableContract interface {
	Address() [20]byte
	DeployedAt() uint64
	MaxBlocksPerStep() uint64
	PollingInterval() time.Duration
	PrintProgressInterval() time.Duration
}

// RPCClient is the minimal chain-head surface the watcher needs. Concrete
// implementations wrap a real JSON-RPC client (see internal/evmclient).
type RPCClient interface {
	ChainID(ctx context.Context) (uint64, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// DecodedEvent pairs a typed, decoded event with the block and log
// position it was observed at, for ordering and cursor advancement.
type DecodedEvent[Event any] struct {
	Event       Event
	BlockNumber uint64
	LogIndex    uint32
}

// EventDecoder fetches and decodes events for one contract over a
// half-open block range (fromBlock, toBlock], in ascending (block,
// log-index) order.
type EventDecoder[Event any] interface {
	FetchEvents(ctx context.Context, fromBlock, toBlock uint64) ([]DecodedEvent[Event], error)
}

// EventHandler processes one decoded event. Implementations must be
// idempotent per (resource id, event hash): check EventHashStore.ContainsEvent
// before any side effect, and call StoreEvent only once that side effect
// has durably committed.
type EventHandler[Event any] interface {
	HandleEvent(ctx context.Context, store relayerstore.WatcherStore, contract WatchableContract, event DecodedEvent[Event]) error
}

// EventWatcher drives one (chain, contract) event stream to completion,
// restarting itself under a 1-second constant backoff on any transient or
// restart-worthy failure.
type EventWatcher[Event any] struct {
	RPC      RPCClient
	Store    relayerstore.WatcherStore
	Contract WatchableContract
	Decoder  EventDecoder[Event]
	Handlers []EventHandler[Event]
	RelayerCtx *relayercontext.RelayerContext

	lastProgressPrint time.Time
}

// Run executes the watcher until ctx is canceled or a fatal error (chain
// not found in configuration) occurs.
func (w *EventWatcher[Event]) Run(ctx context.Context) error {
	return retry.Supervise(ctx, supervisorRestartDelay, w.runLoop)
}

func (w *EventWatcher[Event]) runLoop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		cooldown, err := w.iterate(ctx)
		if err != nil {
			return err
		}
		if cooldown {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.Contract.PollingInterval()):
			}
		}
	}
}

// iterate runs exactly one pass of the algorithm: read cursor, compute the
// confirmed range, dispatch events in it, and report whether the watcher
// should cool down before the next pass.
func (w *EventWatcher[Event]) iterate(ctx context.Context) (shouldCooldown bool, err error) {
	chainID, err := w.RPC.ChainID(ctx)
	if err != nil {
		return false, fmt.Errorf("watcher: reading chain id: %w", err)
	}

	chainCfg, ok := w.RelayerCtx.ChainConfig(chainID)
	if !ok {
		return false, retry.Permanent(relayererrors.NewChainNotFoundError(fmt.Sprintf("%d", chainID)))
	}

	target := proposals.NewContractAddressTargetSystem(w.Contract.Address())
	typedChain := proposals.NewEvmTypedChainId(uint32(chainID))
	resourceID := proposals.NewResourceId(target, typedChain)
	historyKey := proposals.NewResourceIDHistoryStoreKey(resourceID)

	block, err := w.Store.GetLastBlockNumber(historyKey, w.Contract.DeployedAt())
	if err != nil {
		return false, fmt.Errorf("watcher: reading cursor: %w", err)
	}

	tip, err := w.RPC.BlockNumber(ctx)
	if err != nil {
		return false, fmt.Errorf("watcher: reading chain tip: %w", err)
	}

	var finalized uint64
	if tip > chainCfg.BlockConfirmations {
		finalized = tip - chainCfg.BlockConfirmations
	}

	dest := block + w.Contract.MaxBlocksPerStep()
	if dest > finalized {
		dest = finalized
	}

	if dest > block {
		events, err := w.Decoder.FetchEvents(ctx, block, dest)
		if err != nil {
			return false, fmt.Errorf("watcher: fetching events: %w", err)
		}

		for _, event := range events {
			if err := w.dispatch(ctx, historyKey, event); err != nil {
				return false, err
			}
		}
	}

	if _, err := w.Store.SetLastBlockNumber(historyKey, dest); err != nil {
		return false, fmt.Errorf("watcher: advancing cursor: %w", err)
	}

	if w.RelayerCtx.Metrics != nil {
		chainLabel := fmt.Sprintf("%d", chainID)
		w.RelayerCtx.Metrics.LastSyncedBlock.WithLabelValues(chainLabel, fmt.Sprintf("%x", w.Contract.Address())).Set(float64(dest))
	}

	w.maybePrintProgress(chainID, block, dest, tip)

	return dest == finalized, nil
}

// dispatch fans event out to every handler concurrently, advances the
// cursor past it if any handler succeeded, and otherwise returns
// ErrForceRestart so the outer supervisor restarts the whole task without
// having advanced past this event.
func (w *EventWatcher[Event]) dispatch(ctx context.Context, historyKey proposals.HistoryStoreKey, event DecodedEvent[Event]) error {
	results := make(chan bool, len(w.Handlers))
	for _, h := range w.Handlers {
		h := h
		go func() {
			err := retry.WithBoundedRetries(ctx, handlerRetryDelay, handlerMaxRetries, func(ctx context.Context) error {
				return h.HandleEvent(ctx, w.Store, w.Contract, event)
			}, func(attemptErr error, delay time.Duration) {
				log.Error("event handler failed, retrying", "block", event.BlockNumber, "logIndex", event.LogIndex, "error", attemptErr, "retryIn", delay)
			})
			if err != nil {
				log.Error("event handler failed after retries", "block", event.BlockNumber, "logIndex", event.LogIndex, "error", err)
			}
			results <- err == nil
		}()
	}

	anySuccess := false
	for range w.Handlers {
		if <-results {
			anySuccess = true
		}
	}

	if !anySuccess {
		return relayererrors.ErrForceRestart
	}

	if _, err := w.Store.SetLastBlockNumber(historyKey, event.BlockNumber); err != nil {
		return fmt.Errorf("watcher: advancing cursor past event: %w", err)
	}
	log.Info("advanced cursor past handled event", "block", event.BlockNumber, "logIndex", event.LogIndex)
	return nil
}

func (w *EventWatcher[Event]) maybePrintProgress(chainID, block, dest, tip uint64) {
	interval := w.Contract.PrintProgressInterval()
	if interval <= 0 {
		return
	}
	now := time.Now()
	if !w.lastProgressPrint.IsZero() && now.Sub(w.lastProgressPrint) < interval {
		return
	}
	w.lastProgressPrint = now

	var progress float64
	if tip > 0 {
		progress = 100 * float64(dest) / float64(tip)
	}
	if w.RelayerCtx.Metrics != nil {
		chainLabel := fmt.Sprintf("%d", chainID)
		w.RelayerCtx.Metrics.SyncProgress.WithLabelValues(chainLabel, fmt.Sprintf("%x", w.Contract.Address())).Set(progress)
	}
	log.Info("sync progress", "kind", "Sync", "block", block, "dest_block", dest, "sync_progress", progress)
}
