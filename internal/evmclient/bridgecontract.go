package evmclient

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// bridgeABIJSON is the signature-bridge contract's minimal ABI: the two
// methods a BridgeCommand can invoke. Everything else the deployed contract
// exposes (guarded admin calls, view functions) is irrelevant to command
// dispatch and is deliberately left out.
const bridgeABIJSON = `[
	{"type":"function","name":"executeProposalWithSignature","stateMutability":"nonpayable",
	 "inputs":[{"name":"data","type":"bytes"},{"name":"signature","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"transferOwnershipWithSignature","stateMutability":"nonpayable",
	 "inputs":[{"name":"publicKey","type":"bytes"},{"name":"nonce","type":"uint32"},{"name":"signature","type":"bytes"}],"outputs":[]}
]`

// BridgeContract binds one deployed signature-bridge contract to a signing
// key, implementing pkg/bridge.BridgeContract against a live chain.
type BridgeContract struct {
	bound *bind.BoundContract
	key   *ecdsa.PrivateKey
	opts  *bind.TransactOpts
}

// NewBridgeContract builds a BridgeContract bound to address on client,
// signing outgoing transactions with key for chainID.
func NewBridgeContract(client *Client, address common.Address, key *ecdsa.PrivateKey, chainID uint64) (*BridgeContract, error) {
	parsed, err := abi.JSON(strings.NewReader(bridgeABIJSON))
	if err != nil {
		return nil, fmt.Errorf("evmclient: parsing bridge abi: %w", err)
	}
	backend := client.Underlying()
	bound := bind.NewBoundContract(address, parsed, backend, backend, backend)

	opts, err := bind.NewKeyedTransactorWithChainID(key, new(big.Int).SetUint64(chainID))
	if err != nil {
		return nil, fmt.Errorf("evmclient: building transactor: %w", err)
	}
	return &BridgeContract{bound: bound, key: key, opts: opts}, nil
}

// ExecuteProposalWithSignature submits a governed proposal's bytes and
// threshold signature to the bridge contract.
func (c *BridgeContract) ExecuteProposalWithSignature(ctx context.Context, data, signature []byte) error {
	opts := *c.opts
	opts.Context = ctx
	_, err := c.bound.Transact(&opts, "executeProposalWithSignature", data, signature)
	if err != nil {
		return fmt.Errorf("evmclient: executeProposalWithSignature: %w", err)
	}
	return nil
}

// TransferOwnershipWithSignature rotates the bridge's governor key.
func (c *BridgeContract) TransferOwnershipWithSignature(ctx context.Context, publicKey []byte, nonce uint32, signature []byte) error {
	opts := *c.opts
	opts.Context = ctx
	_, err := c.bound.Transact(&opts, "transferOwnershipWithSignature", publicKey, nonce, signature)
	if err != nil {
		return fmt.Errorf("evmclient: transferOwnershipWithSignature: %w", err)
	}
	return nil
}
