package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/fetch"
	"github.com/jobdigest/job-agent/internal/logger"
	"github.com/jobdigest/job-agent/internal/posting"
	"github.com/jobdigest/job-agent/internal/profile"
	"github.com/jobdigest/job-agent/internal/scoring"
	"github.com/jobdigest/job-agent/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Reviewer asks Gemini for an advisory note on an already scored posting.
type Reviewer struct {
	generator contentGenerator
	profile   *profile.Profile
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	maxNoteLength       = 280
	// promptDescriptionLength keeps long descriptions from dominating the prompt.
	promptDescriptionLength = 1500
)

func NewReviewer(generator contentGenerator, prof *profile.Profile, logger *zap.Logger, maxLogLength int) *Reviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Reviewer{
		generator: generator,
		profile:   prof,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (r *Reviewer) Review(ctx context.Context, p posting.Posting, result scoring.Result) (string, error) {
	if r.generator == nil {
		return "", errors.New("gemini generator is required")
	}

	prompt, err := r.buildPrompt(p, result)
	if err != nil {
		return "", err
	}

	log := logger.WithFields(r.logger, append(logger.PostingFields(p), logger.AIFields(Provider, r.generator.Model())...)...)
	log.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, r.maxLogLen)),
	)

	raw, err := r.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	return parseResponse(raw)
}

type promptProfile struct {
	Name            string   `json:"name"`
	TargetRoles     []string `json:"target_roles"`
	Skills          []string `json:"skills"`
	TargetLocations []string `json:"target_locations"`
	Background      []string `json:"background,omitempty"`
}

func (r *Reviewer) buildPrompt(p posting.Posting, result scoring.Result) (string, error) {
	var candidate promptProfile
	if r.profile != nil {
		candidate = promptProfile{
			Name:            r.profile.Name,
			TargetRoles:     r.profile.TargetRoles,
			Skills:          r.profile.Skills.Names(),
			TargetLocations: r.profile.TargetLocations,
			Background:      r.profile.Background,
		}
	}

	profileJSON, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile payload: %w", err)
	}

	p.Description = fetch.Clip(p.Description, promptDescriptionLength)
	postingJSON, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal posting payload: %w", err)
	}

	result.Breakdown = scoring.Breakdown{}
	resultJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result payload: %w", err)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Candidate:\n{{PROFILE_JSON}}\n\nPosting:\n{{POSTING_JSON}}\n\nScore result:\n{{RESULT_JSON}}\n\nJSON Response:"
	}

	replacer := strings.NewReplacer(
		"{{PROFILE_JSON}}", string(profileJSON),
		"{{POSTING_JSON}}", string(postingJSON),
		"{{RESULT_JSON}}", string(resultJSON),
		"{{MAX_NOTE_LENGTH}}", strconv.Itoa(maxNoteLength),
	)
	return replacer.Replace(template), nil
}

func parseResponse(raw string) (string, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}

	note := coerceString(data["note"])
	if note == "" {
		return "", errors.New("gemini response has no note")
	}
	return fetch.Clip(strings.Join(strings.Fields(note), " "), maxNoteLength), nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
