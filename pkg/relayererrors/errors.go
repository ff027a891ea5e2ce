// Package relayererrors defines the small error taxonomy shared by the
// watcher and bridge engines: transient errors (recovered by local retry
// or the outer backoff restart), the restart-worthy ForceRestart signal,
// and fatal configuration errors that must reach the operator.
package relayererrors

import (
	"errors"
	"fmt"
)

// ErrForceRestart is returned by a watcher iteration when every handler
// failed for an event. It is restart-worthy: the supervisor backs off and
// retries the whole watcher task, and the cursor is not advanced.
var ErrForceRestart = errors.New("relayer: all handlers failed, forcing a restart")

// ChainNotFoundError is a fatal configuration error: the watcher could not
// find a chain configuration entry for the chain id reported by the RPC
// client.
type ChainNotFoundError struct {
	ChainID string
}

func (e *ChainNotFoundError) Error() string {
	return fmt.Sprintf("relayer: chain not found in configuration: %s", e.ChainID)
}

// NewChainNotFoundError builds a ChainNotFoundError for the given chain id.
func NewChainNotFoundError(chainID string) error {
	return &ChainNotFoundError{ChainID: chainID}
}

// IsChainNotFound reports whether err is (or wraps) a ChainNotFoundError.
func IsChainNotFound(err error) bool {
	var target *ChainNotFoundError
	return errors.As(err, &target)
}

// IsForceRestart reports whether err is (or wraps) ErrForceRestart.
func IsForceRestart(err error) bool {
	return errors.Is(err, ErrForceRestart)
}
