// Package profile describes the candidate a job posting is scored against.
package profile

import (
	"errors"
	"fmt"
	"strings"
)

// Entry is one canonical name with the lowercase text variants that indicate it.
type Entry struct {
	Name     string   `mapstructure:"name" json:"name"`
	Keywords []string `mapstructure:"keywords" json:"keywords"`
}

// Taxonomy is an ordered list of entries. Order matters: role matching is first-match-wins.
type Taxonomy []Entry

// Names returns the canonical names in order.
func (t Taxonomy) Names() []string {
	names := make([]string, 0, len(t))
	for _, entry := range t {
		names = append(names, entry.Name)
	}
	return names
}

// Profile is the immutable input the scoring engine reads. It is never modified by scoring.
type Profile struct {
	Name            string   `mapstructure:"name" json:"name"`
	Email           string   `mapstructure:"email" json:"email,omitempty"`
	TargetRoles     []string `mapstructure:"target-roles" json:"target_roles"`
	Roles           Taxonomy `mapstructure:"roles" json:"roles"`
	Skills          Taxonomy `mapstructure:"skills" json:"skills"`
	Gaps            Taxonomy `mapstructure:"gaps" json:"gaps"`
	TargetLocations []string `mapstructure:"target-locations" json:"target_locations"`
	NegativeSignals []string `mapstructure:"negative-signals" json:"negative_signals"`
	PositiveSignals []string `mapstructure:"positive-signals" json:"positive_signals"`
	// Background is free text about the candidate. Scoring ignores it; advisory notes read it.
	Background []string `mapstructure:"background" json:"background,omitempty"`
}

// Validate reports structural problems that would make matching misbehave,
// such as empty keywords that match every text.
func (p *Profile) Validate() error {
	if p == nil {
		return errors.New("profile is required")
	}

	if len(p.Roles) == 0 && len(p.TargetRoles) == 0 {
		return errors.New("profile needs at least one role entry or target role")
	}

	var errs []error
	for section, taxonomy := range map[string]Taxonomy{
		"roles":  p.Roles,
		"skills": p.Skills,
		"gaps":   p.Gaps,
	} {
		for i, entry := range taxonomy {
			if strings.TrimSpace(entry.Name) == "" {
				errs = append(errs, fmt.Errorf("%s[%d]: name is required", section, i))
			}
			if len(entry.Keywords) == 0 {
				errs = append(errs, fmt.Errorf("%s[%d] %q: at least one keyword is required", section, i, entry.Name))
			}
			for _, kw := range entry.Keywords {
				if kw == "" {
					errs = append(errs, fmt.Errorf("%s[%d] %q: empty keyword", section, i, entry.Name))
				}
			}
		}
	}

	for section, phrases := range map[string][]string{
		"target-roles":     p.TargetRoles,
		"target-locations": p.TargetLocations,
		"negative-signals": p.NegativeSignals,
		"positive-signals": p.PositiveSignals,
	} {
		for i, phrase := range phrases {
			if strings.TrimSpace(phrase) == "" {
				errs = append(errs, fmt.Errorf("%s[%d]: empty value", section, i))
			}
		}
	}

	return errors.Join(errs...)
}
