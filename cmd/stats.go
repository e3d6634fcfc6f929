package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print tracker statistics",
	Run: func(cmd *cobra.Command, _ []string) {
		config, logger := startup()
		defer logger.Sync()

		ctx := context.Background()
		db, err := openStore(ctx, config)
		if err != nil {
			logger.Fatal("opening the job store", zap.Error(err))
		}
		defer db.Close()

		stats, err := db.Stats(ctx, time.Now())
		if err != nil {
			logger.Fatal("getting stats", zap.Error(err))
		}
		printStats(os.Stdout, stats)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func printStats(w io.Writer, stats *store.Stats) {
	fmt.Fprintf(w, "Total tracked: %d\n", stats.Total)
	fmt.Fprintf(w, "Found today:   %d\n", stats.Today)
	fmt.Fprintf(w, "Average score: %.1f\n", stats.AvgScore)

	if len(stats.ByPlatform) > 0 {
		fmt.Fprintln(w, "By platform:")
		platforms := make([]string, 0, len(stats.ByPlatform))
		for name := range stats.ByPlatform {
			platforms = append(platforms, name)
		}
		sort.Strings(platforms)
		for _, name := range platforms {
			fmt.Fprintf(w, "  %-12s %d\n", name, stats.ByPlatform[name])
		}
	}

	if run := stats.LastRun; run != nil {
		fmt.Fprintf(w, "Last run:      %s (found %d, scored %d, kept %d, email sent: %t)\n",
			run.RunAt.Local().Format("2006-01-02 15:04"), run.Found, run.Scored, run.Kept, run.EmailSent)
	}
}
