package config

import (
	"github.com/spf13/viper"

	"github.com/tidepay/tidepay-go/internal/ledger/ranges"
)

// Default values
const (
	DefaultNodeURL     = "http://localhost:5005"
	DefaultNodeTimeout = "30s"
	DefaultTxCacheSize = 1024
	DefaultNamespace   = "tidepay"
)

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	// Node defaults
	v.SetDefault("node.url", DefaultNodeURL)
	v.SetDefault("node.timeout", DefaultNodeTimeout)

	// History defaults
	v.SetDefault("history.earliest_ledger", ranges.DefaultEarliestLedger)
	v.SetDefault("history.tx_cache_size", DefaultTxCacheSize)
	v.SetDefault("history.binary", false)
	v.SetDefault("history.check_gaps", true)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.disable_stacktrace", true)
	v.SetDefault("log.output_paths", []string{"stderr"})
	v.SetDefault("log.error_output_paths", []string{"stderr"})

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", DefaultNamespace)
}
