package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/digest"
	"github.com/jobdigest/job-agent/internal/filtering"
	"github.com/jobdigest/job-agent/internal/store"
)

const (
	PromptBack                = "Back"
	PromptExit                = "Exit"
	PromptAppendToExcludeFile = "Archive all and append to exclude file"
)

var shortlistCmd = &cobra.Command{
	Use:   "shortlist",
	Short: "Walk through today's shortlist and update job statuses",
	Run: func(cmd *cobra.Command, _ []string) {
		config, logger := startup()
		defer logger.Sync()

		ctx := context.Background()
		db, err := openStore(ctx, config)
		if err != nil {
			logger.Fatal("opening the job store", zap.Error(err))
		}
		defer db.Close()

		if err := reviewShortlist(ctx, db, logger, config); err != nil {
			logger.Fatal("reviewing the shortlist", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(shortlistCmd)
}

func jobLabel(job store.Job) string {
	badge := digest.BadgeFor(job.FitScore)
	return fmt.Sprintf("%d %s %d/10 %s @ %s [%s]",
		job.ID, badge.Icon, job.FitScore, job.Title, job.Company, job.Status)
}

// reviewShortlist loops until the user exits. Every status change is written immediately.
func reviewShortlist(ctx context.Context, db *store.Store, logger *zap.Logger, config *Config) error {
	for {
		jobs, err := db.Shortlist(ctx, time.Now(), config.MinFitScore)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			logger.Info("nothing shortlisted today")
			return nil
		}

		items := make([]string, 0, len(jobs)+2)
		for _, job := range jobs {
			items = append(items, jobLabel(job))
		}
		if config.ExcludeFile != "" {
			items = append(items, PromptAppendToExcludeFile)
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptExit),
			Size:  10,
		}

		_, selected, err := jobPrompt.Run()
		if err != nil {
			return err
		}

		switch selected {
		case PromptExit:
			return nil
		case PromptAppendToExcludeFile:
			if err := archiveAll(ctx, db, logger, config.ExcludeFile, jobs); err != nil {
				return err
			}
		default:
			id, err := strconv.ParseInt(strings.Split(selected, " ")[0], 10, 64)
			if err != nil {
				return fmt.Errorf("there is no such job %q", selected)
			}
			if err := changeStatus(ctx, db, logger, id); err != nil {
				return err
			}
		}
	}
}

func changeStatus(ctx context.Context, db *store.Store, logger *zap.Logger, id int64) error {
	items := make([]string, 0, len(store.Statuses)+1)
	for _, status := range store.Statuses {
		items = append(items, string(status))
	}

	statusPrompt := promptui.Select{
		Label: "New status",
		Items: append(items, PromptBack),
	}
	_, selected, err := statusPrompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	status, err := store.ParseStatus(selected)
	if err != nil {
		return err
	}
	if err := db.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	logger.Info("status updated", zap.Int64("job_id", id), zap.String("status", string(status)))
	return nil
}

func archiveAll(ctx context.Context, db *store.Store, logger *zap.Logger, excludeFile string, jobs []store.Job) error {
	urls := make([]string, 0, len(jobs))
	for _, job := range jobs {
		urls = append(urls, job.URL)
		if err := db.UpdateStatus(ctx, job.ID, store.StatusArchived); err != nil {
			return err
		}
	}

	added, err := filtering.AppendExcludeFile(excludeFile, urls)
	if err != nil {
		return err
	}
	logger.Info("appended to exclude file", zap.String("filename", excludeFile), zap.Int("added", added))
	return nil
}
