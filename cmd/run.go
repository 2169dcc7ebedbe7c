package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/reloadpress/autopost/internal/logger"
	"github.com/reloadpress/autopost/internal/models"
	"github.com/reloadpress/autopost/internal/pipeline"
	"github.com/reloadpress/autopost/internal/schedule"
)

var (
	runPosts  int
	runDryRun bool

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Plan and publish a batch of scheduled posts",
		Long: `Infer the posting rotation from the site, allocate collision-free
schedule slots, then generate, enhance, and create each post.`,
		RunE: runBatch,
	}
)

func init() {
	runCmd.Flags().IntVar(&runPosts, "posts", 0, "number of posts to plan (default from config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "plan the batch and print it without publishing")
}

func runBatch(cmd *cobra.Command, _ []string) error {
	d, err := newDeps()
	if err != nil {
		return err
	}
	defer d.Close()

	plan, err := planBatch(cmd.Context(), d)
	if err != nil {
		return err
	}

	if runDryRun {
		renderPlan(os.Stdout, plan)
		return nil
	}

	runner, err := d.runner()
	if err != nil {
		return err
	}

	report := runner.Run(cmd.Context(), plan)
	d.log.Info("batch finished",
		logger.String("run_id", report.RunID),
		logger.Int("created", report.Count(models.OutcomeCreated)),
		logger.Int("rejected", report.Count(models.OutcomeRejected)),
		logger.Int("failed", report.Count(models.OutcomeFailed)),
	)
	if report.AllFailed() {
		return fmt.Errorf("run %s: every post failed", report.RunID)
	}
	return nil
}

// renderPlan prints the planned batch as a table without touching the
// CMS, so a dry run is safe to repeat.
func renderPlan(w io.Writer, plan pipeline.Plan) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Scheduled (GMT)", "Type", "Category"})
	for _, p := range plan.Posts {
		t.AppendRow(table.Row{
			p.ScheduledAt.Format("2006-01-02 15:04"),
			p.ContentType,
			p.Category.Name,
		})
	}
	t.Render()
}

func planBatch(ctx context.Context, d *deps) (pipeline.Plan, error) {
	count := runPosts
	if count <= 0 {
		count = d.cfg.Schedule.PostsPerRun
	}
	excluded, err := d.cfg.Schedule.ExcludedWeekdayMap()
	if err != nil {
		return pipeline.Plan{}, err
	}

	planner := pipeline.NewPlanner(d.cms, d.log)
	return planner.Plan(ctx, pipeline.PlanOptions{
		Count:            count,
		PublishAt:        schedule.TimeOfDay{Hour: d.cfg.Schedule.Hour, Minute: d.cfg.Schedule.Minute},
		ExcludedWeekdays: excluded,
	})
}
