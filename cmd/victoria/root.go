package main

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/okian/victoria/internal/adapters/ingest"
	"github.com/okian/victoria/internal/adapters/repository"
	app "github.com/okian/victoria/internal/app"
	"github.com/okian/victoria/internal/config"
	"github.com/okian/victoria/pkg/logger"
	"github.com/okian/victoria/pkg/metrics"
	"github.com/spf13/cobra"
)

const (
	storeMemory = "memory"
	storeSQLite = "sqlite"
)

// cli carries state shared by subcommands once the root pre-run loaded it.
type cli struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "victoria",
		Short:         "Likert response calibration, construct scoring and archetype clustering",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (default $VICTORIA_CONFIG or ./config.yaml)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log_level")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "override log_format (text or json)")

	root.AddCommand(newRunCmd(c), newServeCmd(c))
	return root
}

// setup loads configuration and initializes logging.
func (c *cli) setup(ctx context.Context) error {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(ctx, c.configPath)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return errors.WithHint(errors.Wrap(err, "load config"),
			"check the config file and VICTORIA_* variables; sections nest with __, e.g. VICTORIA_PIPELINE__N_CLUSTERS")
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if c.logFormat != "" {
		cfg.LogFormat = c.logFormat
	}

	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithFormat(logger.Format(cfg.LogFormat))); err != nil {
		return errors.Wrap(err, "initialize logging")
	}
	c.log = logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	c.cfg = cfg
	return nil
}

// newService builds the batch runner described by the loaded config.
func (c *cli) newService(ctx context.Context, extra ...app.Option) (*app.Service, error) {
	settings, err := c.cfg.ToPipelineSettings()
	if err != nil {
		return nil, err
	}
	opts := []app.Option{
		app.WithLogger(c.log.Named("service")),
		app.WithWorkerCount(c.cfg.Batch.Workers),
		app.WithQueueSize(c.cfg.Batch.QueueSize),
		app.WithDedupeSize(c.cfg.Batch.DedupeSize),
		app.WithSettings(settings),
		app.WithOutputDir(c.cfg.Output.Dir),
	}

	if path := c.cfg.Input.ItemMap; path != "" {
		m, err := ingest.LoadItemMap(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, app.WithItemMap(m))
	}
	if path := c.cfg.Input.Norms; path != "" {
		n, err := ingest.LoadNorms(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, app.WithNorms(n))
	}

	store, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	opts = append(opts, app.WithStore(store))

	return app.New(append(opts, extra...)...), nil
}

func (c *cli) openStore(ctx context.Context) (repository.Store, error) {
	storeOpts := []repository.Option{
		repository.WithRecorder(metrics.Default()),
		repository.WithLogger(c.log.Named("store")),
	}
	switch c.cfg.Store.Driver {
	case storeSQLite:
		c.log.Info(ctx, "using sqlite store", logger.String("dsn", c.cfg.Store.DSN))
		store, err := repository.OpenSQLite(ctx, c.cfg.Store.DSN, storeOpts...)
		if err != nil {
			return nil, err
		}
		return store, nil
	case storeMemory, "":
		return repository.NewMemoryStore(storeOpts...), nil
	default:
		return nil, errors.Mark(errors.Newf("unknown store driver %q", c.cfg.Store.Driver), config.ErrInvalidConfig)
	}
}
