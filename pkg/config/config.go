// Copyright 2025 Certen Protocol
//
// Config loads the sequencer's TOML configuration file with CLI-flag
// overrides layered on top, grounded on the teacher's cobra/viper toolchain
// (both present indirect in its go.mod, promoted to direct use here) rather
// than the teacher's own env-var-only Load(), since spec.md §6 specifies a
// file-backed config with named override flags.

package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the full key set spec.md §6 names for one node.
type Config struct {
	DatabasePath                   string `mapstructure:"database_path" toml:"database_path"`
	LogPath                        string `mapstructure:"log_path" toml:"log_path"`
	SigningKey                     string `mapstructure:"signing_key" toml:"signing_key"`
	SeederRPCURL                   string `mapstructure:"seeder_rpc_url" toml:"seeder_rpc_url"`
	DistributedKeyGenerationRPCURL string `mapstructure:"distributed_key_generation_rpc_url" toml:"distributed_key_generation_rpc_url"`
	InternalRPCURL                 string `mapstructure:"internal_rpc_url" toml:"internal_rpc_url"`
	ClusterPort                    int    `mapstructure:"cluster_port" toml:"cluster_port"`
	ExternalPort                   int    `mapstructure:"external_port" toml:"external_port"`

	// LivenessContracts names every (platform, service_provider) liveness
	// contract this node reconciles cluster views from. Supplements the
	// base key set, grounded on the teacher's per-network endpoint fields
	// (AccumulateURL, EthereumURL, ...).
	LivenessContracts []LivenessContractConfig `mapstructure:"liveness_contracts" toml:"liveness_contracts"`

	// On-chain registrar endpoints, keyed by service provider. An empty
	// ContractAddress means "not configured" — the registrar registry falls
	// back to the no-op Local registrar for any rollup that resolves to it.
	EigenLayer RegistrarConfig `mapstructure:"eigenlayer" toml:"eigenlayer"`
	Symbiotic  RegistrarConfig `mapstructure:"symbiotic" toml:"symbiotic"`
}

// LivenessContractConfig names one on-chain liveness contract to subscribe
// to and reconcile cluster views from.
type LivenessContractConfig struct {
	Platform        string `mapstructure:"platform" toml:"platform"`
	ServiceProvider string `mapstructure:"service_provider" toml:"service_provider"`
	RPCURL          string `mapstructure:"rpc_url" toml:"rpc_url"`
	ContractAddress string `mapstructure:"contract_address" toml:"contract_address"`
	ContractABIPath string `mapstructure:"contract_abi_path" toml:"contract_abi_path"`
}

// RegistrarConfig names one on-chain commitment-registration contract.
type RegistrarConfig struct {
	RPCURL          string `mapstructure:"rpc_url" toml:"rpc_url"`
	ChainID         int64  `mapstructure:"chain_id" toml:"chain_id"`
	ContractAddress string `mapstructure:"contract_address" toml:"contract_address"`
	ContractABIPath string `mapstructure:"contract_abi_path" toml:"contract_abi_path"`
	GasLimit        uint64 `mapstructure:"gas_limit" toml:"gas_limit"`
}

// Default returns the config written by `sequencer init`.
func Default() *Config {
	return &Config{
		DatabasePath:                   "./data/sequencer.db",
		LogPath:                        "./data/sequencer.log",
		SeederRPCURL:                   "http://127.0.0.1:7000",
		DistributedKeyGenerationRPCURL: "http://127.0.0.1:7100",
		InternalRPCURL:                 "127.0.0.1:7200",
		ClusterPort:                    7300,
		ExternalPort:                   7400,
	}
}

// Write serializes cfg as TOML to path.
func Write(path string, cfg *Config) error {
	raw, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Load reads the TOML file at path into viper, layers fs's bound flags on
// top, and unmarshals the merged view.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	def := Default()
	v.SetDefault("database_path", def.DatabasePath)
	v.SetDefault("log_path", def.LogPath)
	v.SetDefault("seeder_rpc_url", def.SeederRPCURL)
	v.SetDefault("distributed_key_generation_rpc_url", def.DistributedKeyGenerationRPCURL)
	v.SetDefault("internal_rpc_url", def.InternalRPCURL)
	v.SetDefault("cluster_port", def.ClusterPort)
	v.SetDefault("external_port", def.ExternalPort)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	out := &Config{}
	if err := v.Unmarshal(out); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return out, nil
}

// Validate checks that every key spec.md §6 requires non-empty is present.
func (c *Config) Validate() error {
	var missing []string
	if c.DatabasePath == "" {
		missing = append(missing, "database_path")
	}
	if c.SigningKey == "" {
		missing = append(missing, "signing_key")
	}
	if c.SeederRPCURL == "" {
		missing = append(missing, "seeder_rpc_url")
	}
	if c.DistributedKeyGenerationRPCURL == "" {
		missing = append(missing, "distributed_key_generation_rpc_url")
	}
	if c.ClusterPort == 0 {
		missing = append(missing, "cluster_port")
	}
	if c.ExternalPort == 0 {
		missing = append(missing, "external_port")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required keys: %v", missing)
	}
	return nil
}
