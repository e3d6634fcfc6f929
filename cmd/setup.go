package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/fetch"
	"github.com/jobdigest/job-agent/internal/filtering"
	"github.com/jobdigest/job-agent/internal/headhunter"
	"github.com/jobdigest/job-agent/internal/logger"
	"github.com/jobdigest/job-agent/internal/notifier"
	"github.com/jobdigest/job-agent/internal/review"
	"github.com/jobdigest/job-agent/internal/review/gemini"
	"github.com/jobdigest/job-agent/internal/secrets"
	"github.com/jobdigest/job-agent/internal/sources"
	"github.com/jobdigest/job-agent/internal/store"
)

// newLogger builds the command logger; the log file from config receives a copy.
func newLogger(config *Config) (*zap.Logger, error) {
	var paths []string
	if config != nil && config.LogFile != "" {
		paths = append(paths, config.LogFile)
	}
	return logger.New(viper.GetBool("json"), viper.GetBool("debug"), paths...)
}

// startup loads and validates the config and builds the logger. Failures stop the command.
func startup() (*Config, *zap.Logger) {
	config, err := getConfig()
	if err != nil {
		stdlog.Fatalf("getting a config: %s", err)
	}

	log, err := newLogger(config)
	if err != nil {
		stdlog.Fatalf("creating a logger: %s", err)
	}

	if err := validateConfig(config); err != nil {
		log.Fatal("validating the config", zap.Error(err))
	}
	return config, log
}

func openStore(ctx context.Context, config *Config) (*store.Store, error) {
	dsn, err := secrets.Load(secrets.Source{
		Name:  "database url",
		Value: config.DatabaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set database-url or DATABASE_URL)", err)
	}

	db, err := store.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func fetchOptions(config *Config) fetch.Options {
	opts := fetch.DefaultOptions()
	if config.Fetch == nil {
		return opts
	}
	if config.Fetch.UserAgent != "" {
		opts.UserAgent = config.Fetch.UserAgent
	}
	if config.Fetch.Timeout > 0 {
		opts.Timeout = config.Fetch.Timeout
	}
	// A zero interval is allowed and disables pacing.
	opts.Interval = config.Fetch.Interval
	opts.Retries = config.Fetch.Retries
	return opts
}

// buildSources creates one adapter per enabled board, each with its own rate limit.
func buildSources(config *Config, log *zap.Logger) ([]sources.Source, error) {
	opts := fetchOptions(config)
	board := func(name string) *fetch.Client {
		return fetch.New(log.With(zap.String(logger.FieldSource, name)), opts)
	}

	cfg := config.Sources
	if cfg == nil {
		cfg = &SourcesConfig{}
	}

	var list []sources.Source
	if b := cfg.LinkedIn; b == nil || !b.Disabled {
		list = append(list, sources.NewLinkedIn(board("LinkedIn"), log, searchesOf(b)))
	}
	if b := cfg.Indeed; b == nil || !b.Disabled {
		list = append(list, sources.NewIndeed(board("Indeed"), log, searchesOf(b)))
	}
	if b := cfg.Naukri; b == nil || !b.Disabled {
		list = append(list, sources.NewNaukri(board("Naukri"), log, searchesOf(b)))
	}

	if hh := cfg.HeadHunter; hh != nil && hh.Enabled {
		token, err := secrets.LoadOptional(secrets.Source{
			Name: "headhunter token",
			File: hh.TokenFile,
			Env:  "HH_TOKEN",
		})
		if err != nil {
			return nil, err
		}
		client := headhunter.New(board("HeadHunter"), log, token)
		list = append(list, sources.NewHeadHunter(client, log, hh.Searches))
	}

	if len(list) == 0 {
		return nil, errors.New("every source is disabled")
	}
	return list, nil
}

func searchesOf(b *BoardConfig) []sources.Search {
	if b == nil {
		return nil
	}
	return b.Searches
}

func buildFilters(config *Config, known filtering.KnownChecker, log *zap.Logger) *filtering.Filtering {
	cfg := &filtering.Config{
		ExcludedCompanies: config.ExcludedCompanies,
		ExcludeFile:       config.ExcludeFile,
	}
	return filtering.New(cfg, filtering.Deps{Known: known, Logger: log}, filtering.Default())
}

// buildNotifier returns the SMTP notifier when a sender and a password are configured,
// and the console otherwise.
func buildNotifier(config *Config, log *zap.Logger, out io.Writer) (notifier.Notifier, error) {
	email := config.Email
	if email == nil || email.Sender == "" {
		log.Info("email sender is not configured; the digest will be printed")
		return notifier.NewConsole(out), nil
	}

	password, err := secrets.LoadOptional(secrets.Source{
		Name:  "smtp password",
		Value: email.Password,
		File:  email.PasswordFile,
		Env:   "GMAIL_PASSWORD",
	})
	if err != nil {
		return nil, err
	}
	if password == "" {
		log.Warn("smtp password is not configured; the digest will be printed",
			zap.String("hint", "set email.password-file or SMTP_PASSWORD_FILE to a Gmail app password"),
		)
		return notifier.NewConsole(out), nil
	}

	return notifier.NewSMTP(log, email.Host, email.Port, email.Sender, password, email.Sender), nil
}

// recipient defaults to the sender so the digest lands in the candidate's own inbox.
func recipient(config *Config) string {
	if config.Email == nil {
		return ""
	}
	if config.Email.Recipient != "" {
		return config.Email.Recipient
	}
	return config.Email.Sender
}

func buildReviewer(ctx context.Context, config *Config, log *zap.Logger) (review.Reviewer, error) {
	cfg := config.AI
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.Provider {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	gcfg := cfg.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: gcfg.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model)
	if err != nil {
		return nil, err
	}

	log.Info("advisory notes enabled", logger.AIFields(gemini.Provider, generator.Model())...)
	return gemini.NewReviewer(generator, config.Profile, log, gcfg.MaxLogLength), nil
}
