package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/posting"
	"github.com/jobdigest/job-agent/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single posting against the profile and print the result as JSON",
	Run: func(cmd *cobra.Command, _ []string) {
		config, logger := startup()
		defer logger.Sync()

		flags := cmd.Flags()
		var p posting.Posting
		p.Title, _ = flags.GetString("title")
		p.Company, _ = flags.GetString("company")
		p.Location, _ = flags.GetString("location")
		p.Description, _ = flags.GetString("description")
		p.URL, _ = flags.GetString("url")

		result := scoring.Score(p, config.Profile)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			logger.Fatal("printing the result", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().String("title", "", "posting title")
	scoreCmd.Flags().String("company", "", "company name")
	scoreCmd.Flags().String("location", "", "posting location")
	scoreCmd.Flags().String("description", "", "posting description")
	scoreCmd.Flags().String("url", "", "posting url")
}
