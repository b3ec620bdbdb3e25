package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tidepay/tidepay-go/internal/codec"
	"github.com/tidepay/tidepay-go/internal/config"
	"github.com/tidepay/tidepay-go/internal/history"
	"github.com/tidepay/tidepay-go/internal/ledger/ranges"
	"github.com/tidepay/tidepay-go/internal/log"
	"github.com/tidepay/tidepay-go/internal/metrics"
	"github.com/tidepay/tidepay-go/internal/rpc/client"
	"github.com/tidepay/tidepay-go/internal/submit"
)

// app wires the components a command needs from the configuration
type app struct {
	config   *config.Config
	logger   *zap.SugaredLogger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	client   *client.Client
}

func newApp(ctx context.Context, flags *rootFlags) (*app, error) {
	cfg, err := config.LoadConfig(flags.configFile)
	if err != nil {
		return nil, err
	}
	if flags.node != "" {
		cfg.Node.URL = flags.node
		if err := config.ValidateConfig(cfg); err != nil {
			return nil, fmt.Errorf("invalid --node: %w", err)
		}
	}
	if flags.debug {
		cfg.Log.Level = "debug"
	}

	logger, err := log.ConfigureLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &app{config: cfg, logger: logger}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		a.metrics = metrics.NewMetrics(a.registry, cfg.Metrics.Namespace)
	}

	a.client, err = client.Dial(ctx, cfg.Node.URL, cfg.Node.Timeout, logger, a.metrics)
	if err != nil {
		return nil, err
	}
	logger.Debugw("connected", "node", cfg.Node.URL)
	return a, nil
}

func (a *app) oracle() *ranges.Oracle {
	return ranges.NewOracle(a.client, a.config.History.EarliestLedger, a.logger)
}

func (a *app) resolver() (*history.Resolver, error) {
	return history.NewResolver(a.client, a.config.History.TxCacheSize, a.logger)
}

func (a *app) historyService() (*history.Service, error) {
	resolver, err := a.resolver()
	if err != nil {
		return nil, err
	}
	normalizer := history.NewNormalizer(codec.XRPL{}, codec.XRPL{})
	return history.NewService(a.client, resolver, a.oracle(), normalizer, a.logger, a.metrics), nil
}

func (a *app) submitter() *submit.Submitter {
	return submit.NewSubmitter(a.client, a.logger, a.metrics)
}

// close releases the connection and, when metrics are enabled, writes
// them to w in the Prometheus text format
func (a *app) close(w io.Writer) error {
	err := a.client.Close()
	if a.registry != nil {
		err = multierr.Append(err, dumpMetrics(w, a.registry))
	}
	_ = a.logger.Sync()
	return err
}

func dumpMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding metrics: %w", err)
		}
	}
	return nil
}

// withApp runs fn with a connected app and closes it afterwards
func withApp(ctx context.Context, flags *rootFlags, errOut io.Writer, fn func(a *app) error) (err error) {
	a, err := newApp(ctx, flags)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, a.close(errOut))
	}()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
