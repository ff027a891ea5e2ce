// Command relayer runs the event-ingestion and dispatch engine: one bridge
// command watcher per configured signature bridge, sharing a single durable
// store and relayer context across every chain.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/webb-tools/relayer-core/internal/evmclient"
	"github.com/webb-tools/relayer-core/pkg/bridge"
	"github.com/webb-tools/relayer-core/pkg/config"
	"github.com/webb-tools/relayer-core/pkg/relayercontext"
	"github.com/webb-tools/relayer-core/pkg/relayerstore/pebblestore"
)

var (
	configFlag = &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "path to the relayer configuration file",
		Required: true,
	}
	dataDirFlag = &cli.StringFlag{
		Name:  "data-dir",
		Usage: "directory for the embedded persistent store",
		Value: "./relayer-db",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "log verbosity (0=crit ... 5=trace)",
		Value: 3,
	}
)

func main() {
	app := &cli.App{
		Name:  "relayer",
		Usage: "cross-chain event-ingestion and dispatch engine",
		Flags: []cli.Flag{configFlag, dataDirFlag, verbosityFlag},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Crit("relayer exited with error", "error", err)
	}
}

func run(c *cli.Context) error {
	log.Root().SetHandler(log.LvlFilterHandler(log.Lvl(c.Int(verbosityFlag.Name)), log.StreamHandler(os.Stderr, log.TerminalFormat(true))))

	cfg, err := config.Load(c.String(configFlag.Name))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	store, err := pebblestore.Open(c.String(dataDirFlag.Name))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	relayerCtx := relayercontext.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	for name, chainCfg := range cfg.EVM {
		name, chainCfg := name, chainCfg
		group.Go(func() error {
			return runChain(groupCtx, relayerCtx, store, name, chainCfg)
		})
	}

	if err := group.Wait(); err != nil && groupCtx.Err() == nil {
		return err
	}
	return nil
}

// runChain dials the chain's RPC endpoint and starts one bridge.Watcher per
// configured Bridge contract. Per-contract event watchers (Anchor/Anchor2/
// GovernanceBravoDelegate) are deployment glue: they need a concrete
// EventDecoder bound to that contract's deployed event ABI, which neither
// this core nor its configuration format supplies (see DESIGN.md). An
// operator wires pkg/watcher.EventWatcher and pkg/handlers directly once it
// has one.
func runChain(ctx context.Context, relayerCtx *relayercontext.RelayerContext, store *pebblestore.Store, name string, chainCfg config.ChainConfig) error {
	client, err := evmclient.Dial(ctx, chainCfg.HTTPEndpoint)
	if err != nil {
		return fmt.Errorf("chain %s: %w", name, err)
	}
	log.Info("connected to chain", "name", name, "chainId", chainCfg.ChainID)

	group, groupCtx := errgroup.WithContext(ctx)

	for _, contract := range chainCfg.Contracts {
		if contract.Kind != config.ContractBridge {
			continue
		}
		key, err := config.ParsePrivateKey(chainCfg.PrivateKeyRaw)
		if err != nil {
			return fmt.Errorf("chain %s: resolving bridge signer: %w", name, err)
		}
		bridgeContract, err := evmclient.NewBridgeContract(client, contract.Common.Address, key, chainCfg.ChainID)
		if err != nil {
			return fmt.Errorf("chain %s: binding bridge contract: %w", name, err)
		}
		bridgeWatcher := &bridge.Watcher{
			RPC:      client,
			Store:    store.BridgeQueue(),
			Contract: bridgeContract,
			Metrics:  relayerCtx.Metrics,
		}
		group.Go(func() error { return bridgeWatcher.Run(groupCtx) })
	}

	group.Go(func() error {
		<-groupCtx.Done()
		return nil
	})

	if err := group.Wait(); err != nil && groupCtx.Err() == nil {
		return fmt.Errorf("chain %s: %w", name, err)
	}
	return nil
}
