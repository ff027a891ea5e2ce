// Package relayermetrics wraps the prometheus collectors the relayer core
// increments directly: the bridge watcher's back-off counter and the
// per-chain sync-progress gauges emitted by the event watcher.
package relayermetrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the core's collectors against one registry. Callers wire
// additional collectors (RPC latency, queue depth, whatever the outer
// process needs) into the same Registry.
type Metrics struct {
	Registry *prometheus.Registry

	// BridgeWatcherBackOff counts every time a bridge watcher's handle_cmd
	// call fails and the outer supervisor backs off and restarts the
	// dequeue loop, labeled by chain id.
	BridgeWatcherBackOff *prometheus.CounterVec

	// SyncProgress reports the most recent sync_progress percentage (0-100)
	// for a given chain/contract pair.
	SyncProgress *prometheus.GaugeVec

	// LastSyncedBlock reports the cursor value last persisted by an event
	// watcher, labeled by chain id and contract address.
	LastSyncedBlock *prometheus.GaugeVec
}

// New registers the core's collectors on a fresh registry and returns the
// resulting handle.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		BridgeWatcherBackOff: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relayer",
			Subsystem: "bridge_watcher",
			Name:      "back_off_total",
			Help:      "Number of times a bridge watcher's dequeue loop backed off after a failed handle_cmd call.",
		}, []string{"chain_id"}),
		SyncProgress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "relayer",
			Subsystem: "event_watcher",
			Name:      "sync_progress_percent",
			Help:      "Most recent dest/tip sync progress percentage reported by an event watcher.",
		}, []string{"chain_id", "contract"}),
		LastSyncedBlock: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "relayer",
			Subsystem: "event_watcher",
			Name:      "last_synced_block",
			Help:      "Last block number persisted to the history cursor.",
		}, []string{"chain_id", "contract"}),
	}
	reg.MustRegister(m.BridgeWatcherBackOff, m.SyncProgress, m.LastSyncedBlock)
	return m
}
