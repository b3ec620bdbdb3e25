package config

import (
	"fmt"
	"net/url"

	"go.uber.org/multierr"

	"github.com/tidepay/tidepay-go/internal/log"
)

// ValidateConfig validates every section and reports all problems at once
func ValidateConfig(config *Config) error {
	var err error

	if nodeErr := config.Node.Validate(); nodeErr != nil {
		err = multierr.Append(err, fmt.Errorf("node: %w", nodeErr))
	}
	if historyErr := config.History.Validate(); historyErr != nil {
		err = multierr.Append(err, fmt.Errorf("history: %w", historyErr))
	}
	if _, logErr := log.ParseLevel(config.Log.Level); logErr != nil {
		err = multierr.Append(err, fmt.Errorf("log: %w", logErr))
	}
	if config.Metrics.Enabled && config.Metrics.Namespace == "" {
		err = multierr.Append(err, fmt.Errorf("metrics: namespace is required when metrics are enabled"))
	}

	return err
}

// Validate validates the node section
func (n *NodeConfig) Validate() error {
	var err error

	if n.URL == "" {
		err = multierr.Append(err, fmt.Errorf("url is required"))
	} else if u, parseErr := url.Parse(n.URL); parseErr != nil {
		err = multierr.Append(err, fmt.Errorf("invalid url %q: %w", n.URL, parseErr))
	} else {
		switch u.Scheme {
		case "http", "https", "ws", "wss":
		default:
			err = multierr.Append(err, fmt.Errorf("url scheme must be http, https, ws or wss, got %q", u.Scheme))
		}
		if u.Host == "" {
			err = multierr.Append(err, fmt.Errorf("url %q has no host", n.URL))
		}
	}

	if n.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("timeout must be positive, got %s", n.Timeout))
	}

	return err
}

// Validate validates the history section
func (h *HistoryConfig) Validate() error {
	var err error

	if h.EarliestLedger == 0 {
		err = multierr.Append(err, fmt.Errorf("earliest_ledger must be positive"))
	}
	if h.TxCacheSize <= 0 {
		err = multierr.Append(err, fmt.Errorf("tx_cache_size must be positive, got %d", h.TxCacheSize))
	}

	return err
}
