package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/reloadpress/autopost/internal/logger"
)

// cronLogger adapts the application logger to the cron.Logger interface
// so the skip chain can report dropped triggers.
type cronLogger struct {
	log logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Info(msg, logger.Any("details", keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error(msg, logger.Error(err), logger.Any("details", keysAndValues))
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run batches on a recurring cron schedule",
	Long: `Start a long-running process that executes a publishing batch on the
configured cron schedule until interrupted.`,
	RunE: runDaemon,
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	runner, err := d.runner()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	// A batch can outlast the interval between triggers; running two at
	// once would plan both from the same future-queue snapshot and
	// double-book slots, so overlapping triggers are skipped.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger{d.log})))
	_, err = c.AddFunc(d.cfg.Daemon.CronSpec, func() {
		plan, err := planBatch(ctx, d)
		if err != nil {
			d.log.Error("planning failed", logger.Error(err))
			return
		}
		report := runner.Run(ctx, plan)
		d.log.Info("scheduled batch finished",
			logger.String("run_id", report.RunID),
			logger.Int("results", len(report.Results)),
		)
	})
	if err != nil {
		return err
	}

	d.log.Info("daemon started", logger.String("cron_spec", d.cfg.Daemon.CronSpec))
	c.Start()
	defer c.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case s := <-sig:
		d.log.Info("shutting down", logger.String("signal", s.String()))
	}
	return nil
}
