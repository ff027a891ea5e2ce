// Package config loads and validates the relayer's configuration tree: one
// entry per EVM chain, each carrying its endpoints, its private key (in one
// of four accepted formats), and the contracts it watches. Keys are
// kebab-case in files, with a WEBB-prefixed environment override layer on
// top, mirroring the source relayer's config::Config + config::Environment
// stack.
package config

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/viper"
	"github.com/tyler-smith/go-bip39"
)

// DefaultPort is the relayer's WebSocket listener default, not used by the
// core itself but carried through for the enclosing process.
const DefaultPort = 9955

// EventsWatcherConfig controls whether, and how often, a contract's event
// watcher polls.
type EventsWatcherConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	PollingInterval uint64 `mapstructure:"polling-interval"`
}

// AnchorWithdrawConfig carries the fee and gas-limit policy applied when
// relaying a withdrawal on a given chain.
type AnchorWithdrawConfig struct {
	WithdrawFeePercentage float64 `mapstructure:"withdraw-fee-percentage"`
	WithdrawGasLimit      uint64  `mapstructure:"withdraw-gaslimit"`
}

// LinkedAnchorConfig names an Anchor2 contract on another chain that is
// linked to one defined locally. Chain is matched case-insensitively.
type LinkedAnchorConfig struct {
	Chain   string         `mapstructure:"chain"`
	Address common.Address `mapstructure:"address"`
}

// CommonContractConfig is embedded by every contract variant.
type CommonContractConfig struct {
	Address    common.Address `mapstructure:"address"`
	DeployedAt uint64         `mapstructure:"deployed-at"`
}

// ContractKind discriminates the Contract tagged union.
type ContractKind string

const (
	ContractAnchor                   ContractKind = "Anchor"
	ContractAnchor2                  ContractKind = "Anchor2"
	ContractBridge                   ContractKind = "Bridge"
	ContractGovernanceBravoDelegate  ContractKind = "GovernanceBravoDelegate"
)

// Contract is the tagged union of contracts a chain entry can declare.
// Exactly the fields relevant to Kind are populated.
type Contract struct {
	Kind ContractKind

	Common        CommonContractConfig
	EventsWatcher EventsWatcherConfig

	// Anchor / Anchor2 only.
	Size           float64
	WithdrawConfig AnchorWithdrawConfig

	// Anchor2 only.
	LinkedAnchors []LinkedAnchorConfig
}

// ChainConfig is one EVM chain entry under `evm.<name>`.
type ChainConfig struct {
	Name               string
	HTTPEndpoint       string `mapstructure:"http-endpoint"`
	WSEndpoint         string `mapstructure:"ws-endpoint"`
	Explorer           string `mapstructure:"explorer"`
	ChainID            uint64 `mapstructure:"chain-id"`
	PrivateKeyRaw      string `mapstructure:"private-key"`
	BlockConfirmations uint64 `mapstructure:"block-confirmations"`
	Contracts          []Contract

	// Account is derived from PrivateKeyRaw during post-load processing.
	Account common.Address
}

// WebbRelayerConfig is the full parsed configuration tree.
type WebbRelayerConfig struct {
	Port uint16
	EVM  map[string]ChainConfig
}

// Load reads path (without extension resolution deferred to viper) merged
// with WEBB-prefixed environment variables, then runs post-load validation
// and private-key resolution.
func Load(path string) (*WebbRelayerConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("WEBB")
	v.AutomaticEnv()
	v.SetDefault("port", DefaultPort)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	raw := struct {
		Port uint16                           `mapstructure:"port"`
		EVM  map[string]rawChainConfig        `mapstructure:"evm"`
	}{}
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg := &WebbRelayerConfig{Port: raw.Port, EVM: make(map[string]ChainConfig, len(raw.EVM))}
	for name, rc := range raw.EVM {
		cc, err := rc.resolve(name)
		if err != nil {
			return nil, fmt.Errorf("config: chain %q: %w", name, err)
		}
		cfg.EVM[name] = cc
	}
	return postLoadingProcess(cfg), nil
}

// rawChainConfig mirrors ChainConfig but keeps contracts untyped long
// enough for the tagged-union dispatch in resolve.
type rawChainConfig struct {
	HTTPEndpoint       string                   `mapstructure:"http-endpoint"`
	WSEndpoint         string                   `mapstructure:"ws-endpoint"`
	Explorer           string                   `mapstructure:"explorer"`
	ChainID            uint64                   `mapstructure:"chain-id"`
	PrivateKey         string                   `mapstructure:"private-key"`
	BlockConfirmations uint64                   `mapstructure:"block-confirmations"`
	Contracts          []map[string]interface{} `mapstructure:"contracts"`
}

func (rc rawChainConfig) resolve(name string) (ChainConfig, error) {
	contracts := make([]Contract, 0, len(rc.Contracts))
	for _, raw := range rc.Contracts {
		c, err := decodeContract(raw)
		if err != nil {
			return ChainConfig{}, err
		}
		contracts = append(contracts, c)
	}

	key, err := ParsePrivateKey(rc.PrivateKey)
	if err != nil {
		return ChainConfig{}, fmt.Errorf("private-key: %w", err)
	}
	account := crypto.PubkeyToAddress(key.PublicKey)

	return ChainConfig{
		Name:               strings.ToLower(name),
		HTTPEndpoint:       rc.HTTPEndpoint,
		WSEndpoint:         rc.WSEndpoint,
		Explorer:           rc.Explorer,
		ChainID:            rc.ChainID,
		PrivateKeyRaw:      rc.PrivateKey,
		BlockConfirmations: rc.BlockConfirmations,
		Contracts:          contracts,
		Account:            account,
	}, nil
}

func decodeContract(raw map[string]interface{}) (Contract, error) {
	kindVal, _ := raw["contract"].(string)
	kind := ContractKind(kindVal)

	commonCfg := CommonContractConfig{
		Address:    addressFromAny(raw["address"]),
		DeployedAt: uint64FromAny(raw["deployed-at"]),
	}
	ew := EventsWatcherConfig{Enabled: true}
	if ewRaw, ok := raw["events-watcher"].(map[string]interface{}); ok {
		if v, ok := ewRaw["enabled"].(bool); ok {
			ew.Enabled = v
		}
		ew.PollingInterval = uint64FromAny(ewRaw["polling-interval"])
	}

	c := Contract{Kind: kind, Common: commonCfg, EventsWatcher: ew}

	switch kind {
	case ContractAnchor, ContractAnchor2:
		c.Size = floatFromAny(raw["size"])
		c.WithdrawConfig = AnchorWithdrawConfig{
			WithdrawFeePercentage: floatFromAny(raw["withdraw-fee-percentage"]),
			WithdrawGasLimit:      uint64FromAny(raw["withdraw-gaslimit"]),
		}
		if kind == ContractAnchor2 {
			for _, la := range sliceFromAny(raw["linked-anchors"]) {
				laMap, ok := la.(map[string]interface{})
				if !ok {
					continue
				}
				c.LinkedAnchors = append(c.LinkedAnchors, LinkedAnchorConfig{
					Chain:   strings.ToLower(fmt.Sprint(laMap["chain"])),
					Address: addressFromAny(laMap["address"]),
				})
			}
		}
	case ContractBridge, ContractGovernanceBravoDelegate:
		// no extra fields beyond Common/EventsWatcher.
	default:
		return Contract{}, fmt.Errorf("unknown contract kind %q", kindVal)
	}
	return c, nil
}

func addressFromAny(v interface{}) common.Address {
	s, _ := v.(string)
	return common.HexToAddress(s)
}

func uint64FromAny(v interface{}) uint64 {
	switch n := v.(type) {
	case uint64:
		return n
	case int:
		return uint64(n)
	case int64:
		return uint64(n)
	case float64:
		return uint64(n)
	default:
		return 0
	}
}

func floatFromAny(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

func sliceFromAny(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

// postLoadingProcess lowercases chain names (already done in resolve) and
// warns, without rejecting, about Anchor2 linked-anchor references to
// chains that are not defined in this configuration.
func postLoadingProcess(cfg *WebbRelayerConfig) *WebbRelayerConfig {
	for chainName, chainCfg := range cfg.EVM {
		for _, c := range chainCfg.Contracts {
			if c.Kind != ContractAnchor2 {
				continue
			}
			for _, linked := range c.LinkedAnchors {
				if _, defined := cfg.EVM[linked.Chain]; !defined {
					log.Warn("chain referenced by a linked anchor is not defined in the config",
						"chain", linked.Chain, "anchor", linked.Address.Hex(), "definedOn", chainName)
				}
			}
		}
	}
	return cfg
}

// ParsePrivateKey implements the four-rule private-key grammar: raw hex,
// environment variable indirection, shell command indirection, or a BIP-39
// mnemonic, in that order.
func ParsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	switch {
	case strings.HasPrefix(raw, "0x"):
		return parseHexPrivateKey(raw)
	case strings.HasPrefix(raw, "$"):
		name := strings.TrimPrefix(raw, "$")
		val, ok := os.LookupEnv(name)
		if !ok {
			return nil, fmt.Errorf("environment variable %q is not set", name)
		}
		return parseHexPrivateKey(val)
	case strings.HasPrefix(raw, "> "):
		cmdLine := strings.TrimPrefix(raw, "> ")
		out, err := runShell(cmdLine)
		if err != nil {
			return nil, fmt.Errorf("executing private-key command: %w", err)
		}
		return parseHexPrivateKey(strings.TrimSpace(out))
	default:
		return parseMnemonicPrivateKey(raw)
	}
}

func parseHexPrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid hex private key: %w", err)
	}
	return key, nil
}

func runShell(cmdLine string) (string, error) {
	cmd := exec.Command("sh", "-c", cmdLine)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

// parseMnemonicPrivateKey derives an ECDSA key from a 12- or 24-word BIP-39
// mnemonic using the standard empty-passphrase seed, then treats the first
// 32 bytes of the seed as the private-key scalar. This matches the
// lightweight, wallet-library-free derivation the relayer has historically
// used rather than a full BIP-32/BIP-44 HD path.
func parseMnemonicPrivateKey(mnemonic string) (*ecdsa.PrivateKey, error) {
	words := strings.Fields(mnemonic)
	if len(words) != 12 && len(words) != 24 {
		return nil, fmt.Errorf("private key must be 0x-hex, $ENV, \"> cmd\", or a 12/24-word mnemonic, got %d words", len(words))
	}
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic checksum")
	}
	seed := bip39.NewSeed(mnemonic, "")
	return crypto.ToECDSA(seed[:32])
}
