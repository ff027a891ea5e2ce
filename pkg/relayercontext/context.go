// Package relayercontext holds the relayer's shared, read-mostly context:
// the parsed configuration tree and the metrics handle every watcher and
// bridge task is constructed with.
package relayercontext

import (
	"github.com/webb-tools/relayer-core/pkg/config"
	"github.com/webb-tools/relayer-core/pkg/relayermetrics"
)

// RelayerContext is created once at startup and shared by every watcher and
// bridge task. It is safe for concurrent read access; the core never
// mutates it after construction.
type RelayerContext struct {
	Config  *config.WebbRelayerConfig
	Metrics *relayermetrics.Metrics
}

// New builds a RelayerContext from an already-loaded configuration, wiring
// a fresh metrics handle.
func New(cfg *config.WebbRelayerConfig) *RelayerContext {
	return &RelayerContext{Config: cfg, Metrics: relayermetrics.New()}
}

// ChainConfig looks up the chain entry whose ChainID matches chainID. Chain
// names are keyed by string in the config map, so this scans by id rather
// than indexing directly.
func (c *RelayerContext) ChainConfig(chainID uint64) (*config.ChainConfig, bool) {
	for _, cc := range c.Config.EVM {
		if cc.ChainID == chainID {
			cc := cc
			return &cc, true
		}
	}
	return nil, false
}
