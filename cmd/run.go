package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/notifier"
	"github.com/jobdigest/job-agent/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect, score and store today's postings, then mail the digest",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("test", "t", false, "collect 5 postings per source and print the digest instead of mailing it")
	runCmd.Flags().StringP("exclude-file", "e", "", "file with posting URLs to skip, one per line. Default is unset.")
	runCmd.Flags().Int("min-fit-score", 0, "minimum fit score to store and notify (default 6)")
	runCmd.Flags().Int("max-jobs", 0, "maximum postings per source (default 30)")

	viper.BindPFlag("exclude-file", runCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("min-fit-score", runCmd.Flags().Lookup("min-fit-score"))
	viper.BindPFlag("max-jobs", runCmd.Flags().Lookup("max-jobs"))
}

// run is the daily pass: collect, filter, score, store and notify.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, logger := startup()
	defer logger.Sync()

	testMode, _ := cmd.Flags().GetBool("test")
	logger.Info("starting the job-agent", zap.String("version", version), zap.Bool("test_mode", testMode))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	db, err := openStore(ctx, config)
	if err != nil {
		logger.Fatal("opening the job store", zap.Error(err))
	}
	defer db.Close()

	srcs, err := buildSources(config, logger)
	if err != nil {
		logger.Fatal("preparing sources", zap.Error(err))
	}

	var notify notifier.Notifier = notifier.NewConsole(os.Stdout)
	if !testMode {
		if notify, err = buildNotifier(config, logger, os.Stdout); err != nil {
			logger.Fatal("preparing the notifier", zap.Error(err))
		}
	}

	reviewer, err := buildReviewer(ctx, config, logger)
	if err != nil {
		logger.Warn("skipping advisory notes", zap.Error(err))
		reviewer = nil
	}

	runner, err := pipeline.New(pipeline.Deps{
		Sources:  srcs,
		Filters:  buildFilters(config, db, logger),
		Store:    db,
		Notifier: notify,
		Reviewer: reviewer,
		Profile:  config.Profile,
		Logger:   logger,
	}, pipeline.Options{
		MinScore:      config.MinFitScore,
		MaxJobs:       config.MaxJobs,
		Recipient:     recipient(config),
		CandidateName: config.Profile.Name,
		TestMode:      testMode,
	})
	if err != nil {
		logger.Fatal("preparing the run", zap.Error(err))
	}

	report, err := runner.Run(ctx)
	if err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}

	stats, err := db.Stats(ctx, time.Now())
	if err != nil {
		logger.Warn("getting stats", zap.Error(err))
		return
	}
	logger.Info("done",
		zap.String("run_id", report.RunID.String()),
		zap.Int("found", report.Found),
		zap.Int("kept", report.Kept),
		zap.Bool("email_sent", report.EmailSent),
		zap.Int("tracked_total", stats.Total),
	)
}

// redacted hides secrets before the config is logged.
func redacted(config *Config) Config {
	c := *config
	if c.DatabaseURL != "" {
		c.DatabaseURL = "<redacted>"
	}
	if c.Email != nil {
		email := *c.Email
		if email.Password != "" {
			email.Password = "<redacted>"
		}
		c.Email = &email
	}
	return c
}
