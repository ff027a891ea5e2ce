// Package relayerstatus carries the withdraw-status taxonomy reported back
// to dApp clients over the (out-of-core) command/response surface: sent,
// submitted, finalized, valid, invalid, dropped, or errored.
package relayerstatus

import "github.com/ethereum/go-ethereum/common"

// WithdrawStatusKind discriminates the WithdrawStatus tagged union.
type WithdrawStatusKind string

const (
	WithdrawSent                WithdrawStatusKind = "sent"
	WithdrawSubmitted           WithdrawStatusKind = "submitted"
	WithdrawFinalized           WithdrawStatusKind = "finalized"
	WithdrawValid               WithdrawStatusKind = "valid"
	WithdrawInvalidMerkleRoots  WithdrawStatusKind = "invalidMerkleRoots"
	WithdrawDroppedFromMemPool  WithdrawStatusKind = "droppedFromMemPool"
	WithdrawErrored             WithdrawStatusKind = "errored"
)

// WithdrawStatus reports the lifecycle stage of one relayed withdrawal
// transaction. Only the fields relevant to Kind are populated.
type WithdrawStatus struct {
	Kind WithdrawStatusKind

	// Submitted / Finalized only.
	TxHash common.Hash

	// Errored only.
	Code   int
	Reason string
}

// Sent reports that the transaction has been sent to the network.
func Sent() WithdrawStatus { return WithdrawStatus{Kind: WithdrawSent} }

// Submitted reports that the transaction was accepted into the mempool.
func Submitted(txHash common.Hash) WithdrawStatus {
	return WithdrawStatus{Kind: WithdrawSubmitted, TxHash: txHash}
}

// Finalized reports that the transaction landed in a block.
func Finalized(txHash common.Hash) WithdrawStatus {
	return WithdrawStatus{Kind: WithdrawFinalized, TxHash: txHash}
}

// Valid reports that the withdrawal proof validated successfully.
func Valid() WithdrawStatus { return WithdrawStatus{Kind: WithdrawValid} }

// InvalidMerkleRoots reports that none of the supplied merkle roots are
// known to the contract.
func InvalidMerkleRoots() WithdrawStatus { return WithdrawStatus{Kind: WithdrawInvalidMerkleRoots} }

// DroppedFromMemPool reports that the transaction was evicted from the
// mempool and must be resubmitted.
func DroppedFromMemPool() WithdrawStatus { return WithdrawStatus{Kind: WithdrawDroppedFromMemPool} }

// Errored reports a failed withdrawal with a structured code and reason.
func Errored(code int, reason string) WithdrawStatus {
	return WithdrawStatus{Kind: WithdrawErrored, Code: code, Reason: reason}
}

// FromRevertReason builds an Errored status from a structured revert
// reason string, with a fixed EVM-execution-reverted code. Unlike the
// source relayer's whitespace-tokenizing error parser, this expects the
// reason to already have been extracted structurally (see
// internal/evmclient.UnpackRevertReason) rather than scraped from an error
// message.
func FromRevertReason(reason string) WithdrawStatus {
	const executionRevertedCode = -32000
	return Errored(executionRevertedCode, reason)
}
