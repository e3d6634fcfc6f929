package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jobdigest/job-agent/internal/headhunter"
	"github.com/jobdigest/job-agent/internal/profile"
	"github.com/jobdigest/job-agent/internal/sources"
)

const (
	app = "job-agent"
)

type Config struct {
	DatabaseURL       string           `mapstructure:"database-url"`
	MinFitScore       int              `mapstructure:"min-fit-score" validate:"min=0,max=10"`
	MaxJobs           int              `mapstructure:"max-jobs" validate:"min=1"`
	ExcludeFile       string           `mapstructure:"exclude-file"`
	ExcludedCompanies []string         `mapstructure:"excluded-companies"`
	LogFile           string           `mapstructure:"log-file"`
	Profile           *profile.Profile `mapstructure:"profile"`
	Fetch             *FetchConfig     `mapstructure:"fetch"`
	Sources           *SourcesConfig   `mapstructure:"sources"`
	Email             *EmailConfig     `mapstructure:"email" validate:"required"`
	AI                *AIConfig        `mapstructure:"ai"`
}

type FetchConfig struct {
	UserAgent string        `mapstructure:"user-agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Interval  time.Duration `mapstructure:"interval"`
	Retries   int           `mapstructure:"retries" validate:"min=0"`
}

type SourcesConfig struct {
	LinkedIn   *BoardConfig      `mapstructure:"linkedin"`
	Indeed     *BoardConfig      `mapstructure:"indeed"`
	Naukri     *BoardConfig      `mapstructure:"naukri"`
	HeadHunter *HeadHunterConfig `mapstructure:"headhunter"`
}

// BoardConfig overrides the built-in searches of a scraped board.
type BoardConfig struct {
	Disabled bool             `mapstructure:"disabled"`
	Searches []sources.Search `mapstructure:"searches"`
}

type HeadHunterConfig struct {
	Enabled   bool                      `mapstructure:"enabled"`
	TokenFile string                    `mapstructure:"token-file"`
	Searches  []headhunter.SearchParams `mapstructure:"searches"`
}

type EmailConfig struct {
	Sender       string `mapstructure:"sender" validate:"omitempty,email"`
	Recipient    string `mapstructure:"recipient" validate:"omitempty,email"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port" validate:"min=0,max=65535"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-agent collects job postings, scores them against a candidate profile and mails a daily digest",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"database-url":           "DATABASE_URL",
		"email.password-file":    "SMTP_PASSWORD_FILE",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	} {
		if err := viper.BindEnv(key, "JOB_AGENT_"+envName(key), env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetEnvPrefix("JOB_AGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("min-fit-score", 6)
	viper.SetDefault("max-jobs", 30)
	viper.SetDefault("email.port", 465)
	viper.SetDefault("fetch.timeout", "20s")
	viper.SetDefault("fetch.interval", "4s")
	viper.SetDefault("fetch.retries", 2)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-agent.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func envName(key string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

func initConfig() {
	// A missing .env is fine: the environment may already be set.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without a config file the defaults and the environment are used. An explicit
	// file that cannot be parsed stops the run.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}
	return withDefaults(config), nil
}

// withDefaults fills the sections every command dereferences.
func withDefaults(config *Config) *Config {
	if config == nil {
		config = &Config{}
	}

	if config.Email == nil {
		config.Email = &EmailConfig{}
	}
	if config.Fetch == nil {
		config.Fetch = &FetchConfig{}
	}
	if config.Sources == nil {
		config.Sources = &SourcesConfig{}
	}
	if config.Profile == nil {
		config.Profile = profile.Default()
	}
	return config
}

// validateConfig checks the settings every command relies on.
func validateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := config.Profile.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}
