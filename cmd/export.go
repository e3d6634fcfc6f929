package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/export"
	"github.com/jobdigest/job-agent/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked jobs to an Excel workbook",
	Run: func(cmd *cobra.Command, _ []string) {
		config, logger := startup()
		defer logger.Sync()

		flags := cmd.Flags()
		out, _ := flags.GetString("out")
		since, _ := flags.GetString("since")
		minScore, _ := flags.GetInt("min-score")

		opts := store.ListOptions{MinScore: minScore}
		if since != "" {
			day, err := time.ParseInLocation(time.DateOnly, since, time.Local)
			if err != nil {
				logger.Fatal("parsing --since", zap.String("since", since), zap.Error(err))
			}
			opts.Since = day
		}

		ctx := context.Background()
		db, err := openStore(ctx, config)
		if err != nil {
			logger.Fatal("opening the job store", zap.Error(err))
		}
		defer db.Close()

		jobs, err := db.List(ctx, opts)
		if err != nil {
			logger.Fatal("listing jobs", zap.Error(err))
		}

		path, err := export.SaveAs(out, jobs)
		if err != nil {
			logger.Fatal("writing the workbook", zap.Error(err))
		}
		logger.Info("exported jobs", zap.String("path", path), zap.Int("count", len(jobs)))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("out", "o", "jobs.xlsx", "output workbook path")
	exportCmd.Flags().String("since", "", "only jobs found on or after this date (YYYY-MM-DD)")
	exportCmd.Flags().Int("min-score", 0, "only jobs with at least this fit score")
}
