package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/webb-tools/relayer-core/pkg/proposals"
	"github.com/webb-tools/relayer-core/pkg/relayermetrics"
	"github.com/webb-tools/relayer-core/pkg/relayerstore/memstore"
)

type fakeRPC struct{ chainID uint64 }

func (f *fakeRPC) ChainID(ctx context.Context) (uint64, error) { return f.chainID, nil }

type recordingContract struct {
	executed []proposals.BridgeCommand
	failNext bool
}

func (c *recordingContract) ExecuteProposalWithSignature(ctx context.Context, data, signature []byte) error {
	if c.failNext {
		return errors.New("execution failed")
	}
	c.executed = append(c.executed, proposals.NewExecuteProposalWithSignature(data, signature))
	return nil
}

func (c *recordingContract) TransferOwnershipWithSignature(ctx context.Context, publicKey []byte, nonce uint32, signature []byte) error {
	c.executed = append(c.executed, proposals.NewTransferOwnershipWithSignature(publicKey, nonce, signature))
	return nil
}

func TestHandleCmdDispatchesByKind(t *testing.T) {
	contract := &recordingContract{}

	cmd := proposals.NewExecuteProposalWithSignature([]byte{0x01, 0x02}, []byte{0xAA})
	require.NoError(t, HandleCmd(context.Background(), contract, cmd))
	require.Equal(t, []proposals.BridgeCommand{cmd}, contract.executed)
}

func TestBridgeCommandRoundTripThroughQueue(t *testing.T) {
	store := memstore.NewQueueStore[proposals.BridgeCommand]()
	key := proposals.NewQueueKeyFromBridgeKey(proposals.NewBridgeKey(proposals.NewEvmTypedChainId(5)))
	cmd := proposals.NewExecuteProposalWithSignature([]byte{0x01, 0x02}, []byte{0xAA, 0xBB})

	require.NoError(t, store.EnqueueItem(key, cmd))

	contract := &recordingContract{}
	w := &Watcher{
		RPC:      &fakeRPC{chainID: 5},
		Store:    store,
		Contract: contract,
		Metrics:  relayermetrics.New(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := w.runLoop(ctx)
	require.NoError(t, err)
	require.Equal(t, []proposals.BridgeCommand{cmd}, contract.executed)

	has, err := store.HasItem(key)
	require.NoError(t, err)
	require.False(t, has)
}

func TestBridgeWatcherBacksOffOnFailure(t *testing.T) {
	store := memstore.NewQueueStore[proposals.BridgeCommand]()
	key := proposals.NewQueueKeyFromBridgeKey(proposals.NewBridgeKey(proposals.NewEvmTypedChainId(5)))
	cmd := proposals.NewExecuteProposalWithSignature([]byte{0x01}, []byte{0x02})
	require.NoError(t, store.EnqueueItem(key, cmd))

	contract := &recordingContract{failNext: true}
	metrics := relayermetrics.New()
	w := &Watcher{
		RPC:      &fakeRPC{chainID: 5},
		Store:    store,
		Contract: contract,
		Metrics:  metrics,
	}

	err := w.runLoop(context.Background())
	require.Error(t, err)

	has, err := store.HasItem(key)
	require.NoError(t, err)
	require.False(t, has, "dequeue is destructive even on a failed handle_cmd")
}
