package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	app "github.com/okian/victoria/internal/app"
	"github.com/okian/victoria/pkg/logger"
	"github.com/spf13/cobra"
)

// ErrRunsFailed is returned when at least one input could not be processed.
var ErrRunsFailed = errors.New("one or more runs failed")

func newRunCmd(c *cli) *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "run <file>...",
		Short: "Run the pipeline on CSV or XLSX response files and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("output") {
				c.cfg.Output.Dir = outputDir
			}
			return c.run(cmd, args)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "export directory (empty disables export)")
	return cmd
}

func (c *cli) run(cmd *cobra.Command, files []string) error {
	ctx := cmd.Context()
	rep := &reporter{w: cmd.OutOrStdout()}

	svc, err := c.newService(ctx, app.WithOutcomeHook(rep.report))
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	for _, f := range files {
		res, err := svc.Submit(ctx, f)
		if err != nil {
			c.log.Error(ctx, "submit failed", logger.String("path", f), logger.Error(err))
			rep.fail()
			continue
		}
		if res.Duplicate {
			rep.printf("%s\tduplicate of an earlier input, skipped\n", f)
		}
	}
	if err := svc.Drain(ctx); err != nil {
		return err
	}
	if rep.failures() > 0 {
		return errors.Wrapf(ErrRunsFailed, "%d of %d", rep.failures(), len(files))
	}
	return nil
}

// reporter prints one line per processed job.
type reporter struct {
	mu     sync.Mutex
	w      io.Writer
	failed int
}

func (r *reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, format, args...)
}

func (r *reporter) fail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
}

func (r *reporter) failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

func (r *reporter) report(o app.Outcome) {
	if o.Err != nil {
		r.fail()
		r.printf("%s\tFAILED\t%v\n", o.Job.Path, o.Err)
		return
	}
	dir := o.Dir
	if dir == "" {
		dir = "-"
	}
	r.printf("%s\t%s\tpersons=%d items=%d clusters=%d warnings=%d\t%s\n",
		o.Job.Path, o.RunID, o.Run.Persons, o.Run.Items, o.Run.Clusters, o.Run.Warnings, dir)
}
