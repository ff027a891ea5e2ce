// Package evmclient adapts *ethclient.Client to the narrow RPCClient
// surfaces pkg/watcher and pkg/bridge depend on, and provides structured
// revert-reason extraction for contract calls that fail on-chain.
package evmclient

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client wraps an ethclient.Client, implementing watcher.RPCClient and
// bridge.RPCClient without either package depending on go-ethereum
// directly.
type Client struct {
	inner *ethclient.Client
}

// Dial connects to an EVM JSON-RPC endpoint (http(s):// or ws(s)://).
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	c, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("evmclient: dial %s: %w", rawURL, err)
	}
	return &Client{inner: c}, nil
}

// ChainID implements watcher.RPCClient and bridge.RPCClient.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	id, err := c.inner.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

// BlockNumber implements watcher.RPCClient.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return c.inner.BlockNumber(ctx)
}

// FilterLogs fetches raw logs for a contract address over a half-open
// block range (fromBlock, toBlock]. A contract-specific
// watcher.EventDecoder can build on top of this; none ships in this module.
func (c *Client) FilterLogs(ctx context.Context, address common.Address, fromBlock, toBlock uint64) ([]types.Log, error) {
	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock + 1),
		ToBlock:   new(big.Int).SetUint64(toBlock),
		Addresses: []common.Address{address},
	}
	return c.inner.FilterLogs(ctx, query)
}

// Underlying returns the wrapped ethclient.Client, for callers that need
// bind.ContractBackend (e.g. abigen-generated contract bindings).
func (c *Client) Underlying() bind.ContractBackend { return c.inner }

// UnpackRevertReason extracts a structured revert reason from a failed
// call's error. This replaces the historical whitespace-tokenizing error-
// message parser with structured extraction from the RPC client's own
// typed error union.
func UnpackRevertReason(err error) (string, bool) {
	data, ok := extractRevertData(err)
	if !ok {
		return "", false
	}
	reason, unpackErr := abi.UnpackRevert(data)
	if unpackErr != nil {
		return "", false
	}
	return reason, true
}

// revertDataer matches ethclient's rpc.DataError, implemented by errors
// returned from eth_call/eth_estimateGas when the node includes revert
// data alongside the message.
type revertDataer interface {
	ErrorData() interface{}
}

func extractRevertData(err error) ([]byte, bool) {
	de, ok := err.(revertDataer)
	if !ok {
		return nil, false
	}
	hexData, ok := de.ErrorData().(string)
	if !ok {
		return nil, false
	}
	data := common.FromHex(hexData)
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}
