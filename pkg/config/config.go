package config

import (
	"fmt"
	"time"
)

// Config represents the complete configuration for chainlake.
type Config struct {
	// Chain is a human-readable chain name, used only for logging/labels.
	Chain string `yaml:"chain" json:"chain" toml:"chain"`

	// ChainID is the EVM chain ID stamped onto every row chainlake writes.
	ChainID uint64 `yaml:"chain_id" json:"chain_id" toml:"chain_id"`

	// RPC contains the JSON-RPC client configuration.
	RPC RPCConfig `yaml:"rpc" json:"rpc" toml:"rpc"`

	// Ingestion contains range-planning and fetch configuration.
	Ingestion IngestionConfig `yaml:"ingestion" json:"ingestion" toml:"ingestion"`

	// Warehouse contains the on-disk layout configuration.
	Warehouse WarehouseConfig `yaml:"warehouse" json:"warehouse" toml:"warehouse"`

	// ABI contains the contract ABI registry configuration used by the
	// decode subcommand.
	ABI ABIConfig `yaml:"abi" json:"abi" toml:"abi"`

	// Metrics contains the Prometheus exposition server configuration.
	Metrics MetricsConfig `yaml:"metrics" json:"metrics" toml:"metrics"`

	// Logging contains the structured logger configuration.
	Logging LoggingConfig `yaml:"logging" json:"logging" toml:"logging"`
}

// RPCConfig represents the configuration for the upstream JSON-RPC endpoint.
type RPCConfig struct {
	// URL is the Ethereum JSON-RPC endpoint URL.
	URL string `yaml:"url" json:"url" toml:"url"`

	// Timeout bounds a single RPC call.
	Timeout time.Duration `yaml:"timeout" json:"timeout" toml:"timeout"`

	// MaxConcurrency bounds the number of in-flight RPC calls.
	MaxConcurrency int `yaml:"max_concurrency" json:"max_concurrency" toml:"max_concurrency"`
}

// ApplyDefaults sets default values for optional RPC configuration fields.
func (r *RPCConfig) ApplyDefaults() {
	if r.Timeout == 0 {
		r.Timeout = 30 * time.Second
	}
	if r.MaxConcurrency == 0 {
		r.MaxConcurrency = 6
	}
}

// IngestionConfig represents the configuration for range planning and fetching.
type IngestionConfig struct {
	// ChunkSize is the number of blocks per planned range.
	ChunkSize uint64 `yaml:"chunk_size" json:"chunk_size" toml:"chunk_size"`

	// LogChunk is the number of blocks per eth_getLogs call within a range.
	LogChunk uint64 `yaml:"log_chunk" json:"log_chunk" toml:"log_chunk"`

	// FinalityDepth is the number of blocks behind head considered finalized.
	FinalityDepth uint64 `yaml:"finality_depth" json:"finality_depth" toml:"finality_depth"`

	// IgnoreFinality bypasses the finality gate entirely when true.
	IgnoreFinality bool `yaml:"ignore_finality" json:"ignore_finality" toml:"ignore_finality"`
}

// ApplyDefaults sets default values for optional ingestion configuration fields.
func (i *IngestionConfig) ApplyDefaults() {
	if i.ChunkSize == 0 {
		i.ChunkSize = 100
	}
	if i.LogChunk == 0 {
		i.LogChunk = 100
	}
}

// WarehouseConfig represents the on-disk layout for checkpoints, state, and lake output.
type WarehouseConfig struct {
	// Dir is the root warehouse directory.
	Dir string `yaml:"dir" json:"dir" toml:"dir"`
}

// ApplyDefaults sets default values for optional warehouse configuration fields.
func (w *WarehouseConfig) ApplyDefaults() {
	if w.Dir == "" {
		w.Dir = "warehouse"
	}
}

// ABIConfig represents the contract ABI registry configuration.
type ABIConfig struct {
	// Dir is the directory containing <protocol>.json ABI files and an
	// optional registry.json.
	Dir string `yaml:"dir" json:"dir" toml:"dir"`
}

// ApplyDefaults sets default values for optional ABI configuration fields.
func (a *ABIConfig) ApplyDefaults() {
	if a.Dir == "" {
		a.Dir = "abis"
	}
}

// MetricsConfig represents the Prometheus exposition server configuration.
type MetricsConfig struct {
	// ListenAddr is the address the /metrics and /health server binds to.
	// Empty disables the server.
	ListenAddr string `yaml:"listen_addr" json:"listen_addr" toml:"listen_addr"`
}

// LoggingConfig represents the structured logger configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level" json:"level" toml:"level"`

	// Development enables console encoding and stack traces.
	Development bool `yaml:"development" json:"development" toml:"development"`
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
}

// ApplyDefaults sets default values for every optional configuration field.
func (c *Config) ApplyDefaults() {
	c.RPC.ApplyDefaults()
	c.Ingestion.ApplyDefaults()
	c.Warehouse.ApplyDefaults()
	c.ABI.ApplyDefaults()
	c.Logging.ApplyDefaults()
}

// Validate checks whether the configuration is usable.
func (c *Config) Validate() error {
	if c.ChainID == 0 {
		return fmt.Errorf("chain_id is required")
	}
	if c.RPC.URL == "" {
		return fmt.Errorf("rpc.url is required")
	}
	if c.Ingestion.ChunkSize == 0 {
		return fmt.Errorf("ingestion.chunk_size must be greater than zero")
	}
	if c.RPC.MaxConcurrency <= 0 {
		return fmt.Errorf("rpc.max_concurrency must be greater than zero")
	}
	if c.Warehouse.Dir == "" {
		return fmt.Errorf("warehouse.dir is required")
	}
	return nil
}
