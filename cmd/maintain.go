package cmd

import (
	"github.com/spf13/cobra"

	"github.com/reloadpress/autopost/internal/logger"
	"github.com/reloadpress/autopost/internal/models"
)

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Re-enhance existing posts and repair broken ones",
	Long: `Sweep scheduled and published posts, re-run enhancement, and write
back only the posts whose body actually changed. With a generation key
configured, posts that look broken are regenerated.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		defer d.Close()

		report, err := d.maintainer().Maintain(cmd.Context())
		if err != nil {
			return err
		}

		d.log.Info("maintenance finished",
			logger.String("run_id", report.RunID),
			logger.Int("updated", report.Count(models.OutcomeUpdated)),
			logger.Int("unchanged", report.Count(models.OutcomeUnchanged)),
			logger.Int("rejected", report.Count(models.OutcomeRejected)),
			logger.Int("failed", report.Count(models.OutcomeFailed)),
		)
		return nil
	},
}
