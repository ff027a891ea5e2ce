// Package bridge implements the bridge command watcher: a single-loop
// consumer that drains a per-chain FIFO queue of BridgeCommand items and
// executes them against a signature-bridge contract.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/webb-tools/relayer-core/pkg/proposals"
	"github.com/webb-tools/relayer-core/pkg/relayermetrics"
	"github.com/webb-tools/relayer-core/pkg/relayerstore"
	"github.com/webb-tools/relayer-core/pkg/retry"
)

// idleSleep is the cooperative pause taken when the queue is empty, to
// avoid a tight spin.
const idleSleep = 10 * time.Millisecond

// supervisorRestartDelay is the outer constant backoff the dequeue loop is
// restarted with after a failed handle_cmd call.
const supervisorRestartDelay = 1 * time.Second

// RPCClient is the minimal chain-identity surface the bridge watcher
// needs.
type RPCClient interface {
	ChainID(ctx context.Context) (uint64, error)
}

// BridgeContract executes BridgeCommand variants against a signature
// bridge. Each variant maps to a distinct on-chain call.
type BridgeContract interface {
	ExecuteProposalWithSignature(ctx context.Context, data, signature []byte) error
	TransferOwnershipWithSignature(ctx context.Context, publicKey []byte, nonce uint32, signature []byte) error
}

// HandleCmd dispatches cmd to the contract method matching its kind.
func HandleCmd(ctx context.Context, contract BridgeContract, cmd proposals.BridgeCommand) error {
	switch cmd.Kind {
	case proposals.BridgeCommandExecuteProposalWithSignature:
		return contract.ExecuteProposalWithSignature(ctx, cmd.Data, cmd.Signature)
	case proposals.BridgeCommandTransferOwnershipWithSignature:
		return contract.TransferOwnershipWithSignature(ctx, cmd.PublicKey, cmd.Nonce, cmd.Signature)
	default:
		return fmt.Errorf("bridge: unknown bridge command kind %d", cmd.Kind)
	}
}

// Watcher drains one chain's bridge-command queue, forever, under a
// 1-second constant backoff supervisor.
type Watcher struct {
	RPC      RPCClient
	Store    relayerstore.QueueStore[proposals.BridgeCommand]
	Contract BridgeContract
	Metrics  *relayermetrics.Metrics
}

// Run executes the watcher until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	return retry.Supervise(ctx, supervisorRestartDelay, w.runLoop)
}

func (w *Watcher) runLoop(ctx context.Context) error {
	chainID, err := w.RPC.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("bridge: reading chain id: %w", err)
	}
	queueKey := proposals.NewQueueKeyFromBridgeKey(proposals.NewBridgeKey(proposals.NewEvmTypedChainId(uint32(chainID))))

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		cmd, ok, err := w.Store.DequeueItem(queueKey)
		if err != nil {
			return fmt.Errorf("bridge: dequeuing: %w", err)
		}
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(idleSleep):
			}
			continue
		}

		if err := HandleCmd(ctx, w.Contract, cmd); err != nil {
			if w.Metrics != nil {
				w.Metrics.BridgeWatcherBackOff.WithLabelValues(fmt.Sprintf("%d", chainID)).Inc()
			}
			log.Error("bridge command failed, restarting dequeue loop", "chainId", chainID, "error", err)
			return fmt.Errorf("bridge: handling command: %w", err)
		}
		log.Info("bridge command handled", "chainId", chainID, "kind", cmd.Kind)
	}
}
