// Command synth writes a synthetic Likert dataset with known archetypes and
// optionally submits it to a running victoria server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/okian/victoria/internal/synth"
	"github.com/okian/victoria/pkg/logger"
	"github.com/spf13/cobra"
)

const defaultTimeout = 30 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = os.Stderr.WriteString("synth: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := synth.DefaultConfig()
	var (
		outDir  string
		url     string
		timeout time.Duration
		verbose bool
	)
	cmd := &cobra.Command{
		Use:           "synth",
		Short:         "Generate a synthetic response file and item map",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			if verbose {
				_ = logger.SetLevelString("debug")
			}
			log := logger.Named("synth")

			ds, err := synth.Generate(cfg)
			if err != nil {
				return err
			}
			files, err := synth.WriteFiles(ctx, outDir, ds, cfg.Format)
			if err != nil {
				return err
			}
			log.Info(ctx, "dataset written",
				logger.Int("persons", cfg.Persons),
				logger.Int("responses", len(ds.Responses)),
				logger.String("responses_file", files.Responses),
				logger.String("item_map", files.ItemMap),
			)
			fmt.Fprintln(cmd.OutOrStdout(), files.Responses)
			fmt.Fprintln(cmd.OutOrStdout(), files.ItemMap)

			if url == "" {
				return nil
			}
			abs, err := filepath.Abs(files.Responses)
			if err != nil {
				return err
			}
			resp, err := synth.NewClient(url, timeout).Submit(ctx, abs)
			if err != nil {
				return err
			}
			log.Info(ctx, "submitted",
				logger.String("job_id", resp.JobID),
				logger.Bool("duplicate", resp.Duplicate),
			)
			fmt.Fprintln(cmd.OutOrStdout(), resp.JobID)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Persons, "persons", cfg.Persons, "number of respondents")
	f.IntVar(&cfg.Constructs, "constructs", cfg.Constructs, "number of constructs")
	f.IntVar(&cfg.ItemsPerConstruct, "items", cfg.ItemsPerConstruct, "items per construct")
	f.IntVar(&cfg.Archetypes, "archetypes", cfg.Archetypes, "latent respondent groups")
	f.Float64Var(&cfg.MissingRate, "missing", cfg.MissingRate, "probability a response is omitted")
	f.Float64Var(&cfg.ReverseRate, "reverse", cfg.ReverseRate, "share of reverse-keyed items")
	f.Float64Var(&cfg.Noise, "noise", cfg.Noise, "response noise in category units")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	f.StringVar(&cfg.Format, "format", cfg.Format, "output format: csv or xlsx")
	f.StringVarP(&outDir, "out", "o", "synthetic", "output directory")
	f.StringVar(&url, "url", "", "victoria server to submit the file to, e.g. http://localhost:9080")
	f.DurationVar(&timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}
