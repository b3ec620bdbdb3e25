package config

import (
	"time"

	"github.com/tidepay/tidepay-go/internal/log"
)

// Config represents the complete tidepay configuration
type Config struct {
	// Node the client talks to
	Node NodeConfig `toml:"node" mapstructure:"node"`

	// History retrieval settings
	History HistoryConfig `toml:"history" mapstructure:"history"`

	// Logging
	Log log.Config `toml:"log" mapstructure:"log"`

	// Prometheus metrics
	Metrics MetricsConfig `toml:"metrics" mapstructure:"metrics"`

	// Internal fields for configuration management
	configPath string `toml:"-" mapstructure:"-"`
}

// NodeConfig holds the [node] section
type NodeConfig struct {
	// URL of the node: http(s):// for JSON-RPC, ws(s):// for WebSocket
	URL string `toml:"url" mapstructure:"url"`
	// Timeout applied to every RPC call
	Timeout time.Duration `toml:"timeout" mapstructure:"timeout"`
}

// HistoryConfig holds the [history] section
type HistoryConfig struct {
	// First ledger assumed to exist when no lower bound is given
	EarliestLedger uint32 `toml:"earliest_ledger" mapstructure:"earliest_ledger"`
	// Number of resolved start transactions kept in memory
	TxCacheSize int `toml:"tx_cache_size" mapstructure:"tx_cache_size"`
	// Request binary encoded transactions from the node
	Binary bool `toml:"binary" mapstructure:"binary"`
	// Verify the node holds every ledger of the searched range
	CheckGaps bool `toml:"check_gaps" mapstructure:"check_gaps"`
}

// MetricsConfig holds the [metrics] section
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled" mapstructure:"enabled"`
	Namespace string `toml:"namespace" mapstructure:"namespace"`
}

// GetConfigPath returns the path of the file the configuration was read
// from, or "" when only defaults and environment were used
func (c *Config) GetConfigPath() string {
	return c.configPath
}
