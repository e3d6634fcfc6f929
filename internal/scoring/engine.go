// Package scoring rates a job posting against a candidate profile.
//
// The engine is a hand-tuned rule system. A posting earns up to 3 points for its role,
// 4 for skill overlap, 2 for experience fit and 1 for location; the sum is rounded
// half-to-even into a 0-10 fit score. Score is pure and holds no state, so one profile
// may be shared by any number of goroutines.
package scoring

import (
	"math"
	"strings"

	"github.com/jobdigest/job-agent/internal/posting"
	"github.com/jobdigest/job-agent/internal/profile"
)

const (
	GeneralCategory = "General"

	roleMatchPoints = 3.0
	roleLoosePoints = 1.5

	skillPoints   = 0.6
	maxSkillScore = 4.0

	defaultExperience = 1.5
	seniorityPenalty  = 0.5
	entryLevelScore   = 2.0
	yearsMarker       = "year"

	locationPoints = 1.0

	maxFitScore      = 10
	noRoleFitCeiling = 4

	maxMatchingSkills = 6
	maxMissingSkills  = 4
)

var remoteMarkers = []string{"remote", "work from home", "wfh"}

type Label string

const (
	LabelHigh   Label = "High"
	LabelMedium Label = "Medium"
	LabelLow    Label = "Low"
)

// LabelFor maps a fit score to its band: 8-10 High, 6-7 Medium, otherwise Low.
func LabelFor(score int) Label {
	switch {
	case score >= 8:
		return LabelHigh
	case score >= 6:
		return LabelMedium
	default:
		return LabelLow
	}
}

// Breakdown keeps the raw sub-scores before the sum is capped and rounded.
type Breakdown struct {
	Role       float64 `json:"role"`
	Skill      float64 `json:"skill"`
	Experience float64 `json:"experience"`
	Location   float64 `json:"location"`
}

// Total is the uncapped sum of the sub-scores.
func (b Breakdown) Total() float64 {
	return b.Role + b.Skill + b.Experience + b.Location
}

type Result struct {
	FitScore       int       `json:"fit_score"`
	RoleCategory   string    `json:"role_category"`
	RoleMatch      Label     `json:"role_match"`
	MatchingSkills []string  `json:"matching_skills"`
	MissingSkills  []string  `json:"missing_skills"`
	KeyRequirement string    `json:"key_requirement"`
	Summary        string    `json:"summary"`
	Breakdown      Breakdown `json:"breakdown"`
}

// Scored is a posting together with the result computed for it.
type Scored struct {
	Posting posting.Posting `json:"posting"`
	Result  Result          `json:"result"`
}

// Score rates p against prof. Empty fields behave as zero keyword hits.
func Score(p posting.Posting, prof *profile.Profile) Result {
	if prof == nil {
		prof = &profile.Profile{}
	}

	title := strings.ToLower(p.Title)
	combined := title + " " + strings.ToLower(p.Description)
	location := strings.ToLower(p.Location)

	var b Breakdown
	var category string
	b.Role, category = roleScore(title, combined, prof)

	matched := findEntries(combined, prof.Skills)
	b.Skill = math.Min(maxSkillScore, float64(len(matched))*skillPoints)
	missing := findEntries(combined, prof.Gaps)

	b.Experience = experienceScore(combined, prof)
	b.Location = locationScore(location, prof)

	fit := int(math.RoundToEven(math.Min(maxFitScore, b.Total())))
	if b.Role == 0 {
		fit = min(fit, noRoleFitCeiling)
	}

	label := LabelFor(fit)
	matched = truncate(matched, maxMatchingSkills)
	missing = truncate(missing, maxMissingSkills)

	return Result{
		FitScore:       fit,
		RoleCategory:   category,
		RoleMatch:      label,
		MatchingSkills: matched,
		MissingSkills:  missing,
		KeyRequirement: KeyRequirement(p.Description),
		Summary:        Summary(label, category, matched, missing),
		Breakdown:      b,
	}
}

func roleScore(title, combined string, prof *profile.Profile) (float64, string) {
	for _, entry := range prof.Roles {
		if containsAny(combined, entry.Keywords) {
			return roleMatchPoints, entry.Name
		}
	}

	for _, target := range prof.TargetRoles {
		for _, word := range strings.Fields(target) {
			if strings.Contains(title, strings.ToLower(word)) {
				return roleLoosePoints, target
			}
		}
	}

	return 0, GeneralCategory
}

// experienceScore starts neutral and applies seniority penalties. A negative phrase
// mentioning years zeroes the score for good; otherwise an entry-level phrase sets it to 2.
func experienceScore(combined string, prof *profile.Profile) float64 {
	score := defaultExperience
	yearsHit := false

	for _, phrase := range prof.NegativeSignals {
		needle := strings.ToLower(phrase)
		if needle == "" || !strings.Contains(combined, needle) {
			continue
		}
		if strings.Contains(needle, yearsMarker) {
			yearsHit = true
			continue
		}
		score = math.Max(0, score-seniorityPenalty)
	}

	if yearsHit {
		return 0
	}

	if containsAny(combined, prof.PositiveSignals) {
		return entryLevelScore
	}

	return score
}

func locationScore(location string, prof *profile.Profile) float64 {
	if location == "" {
		return 0
	}
	if containsAny(location, prof.TargetLocations) || containsAny(location, remoteMarkers) {
		return locationPoints
	}
	return 0
}

func findEntries(text string, taxonomy profile.Taxonomy) []string {
	found := make([]string, 0)
	for _, entry := range taxonomy {
		if containsAny(text, entry.Keywords) {
			found = append(found, entry.Name)
		}
	}
	return found
}

// containsAny reports whether text contains any lowercased needle. Empty needles never match.
func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if needle == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

func truncate(values []string, limit int) []string {
	if len(values) > limit {
		return values[:limit:limit]
	}
	return values
}
