// Package filtering drops collected postings that should never reach scoring.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/posting"
)

// Filter represents a single filtering step applied to postings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, p *posting.Postings) (*posting.Postings, Step, error)
}

// KnownChecker reports whether a posting URL is already tracked.
type KnownChecker interface {
	Exists(ctx context.Context, url string) (bool, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Known  KnownChecker
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	ExcludedCompanies []string
	// ExcludeFile lists posting URLs to skip, one per line.
	ExcludeFile string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns the standard chain in the order it must run.
func Default() []Filter {
	return []Filter{
		NewDedup(),
		NewUntitled(),
		NewCompanies(),
		NewExcludeFile(),
		NewKnown(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates every enabled filter, then applies them in order.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, p *posting.Postings) (*posting.Postings, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		p = next
	}

	return p, nil
}

// Filtering binds a chain to its configuration and dependencies.
type Filtering struct {
	cfg   *Config
	deps  Deps
	steps []Filter
}

func New(cfg *Config, deps Deps, steps []Filter) *Filtering {
	if cfg == nil {
		cfg = &Config{}
	}
	return &Filtering{cfg: cfg, deps: deps, steps: steps}
}

// RunFilters applies the chain to a copy of postings and returns the survivors.
func (f *Filtering) RunFilters(ctx context.Context, postings []posting.Posting) ([]posting.Posting, error) {
	left, err := Run(ctx, f.cfg, f.deps, f.steps, posting.New(postings))
	if err != nil {
		return nil, err
	}
	return left.Values(), nil
}

func (f *Filtering) Describe() []Status {
	return Describe(f.steps)
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
