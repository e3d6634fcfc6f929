package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/jobdigest/job-agent/internal/posting"
)

const (
	FieldRunID    = "run_id"
	FieldSource   = "source"
	FieldTitle    = "title"
	FieldCompany  = "company"
	FieldURL      = "url"
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, trimming whitespace and
// omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger. A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

func RunFields(runID string) []zap.Field {
	return StringFields(StringField{Key: FieldRunID, Value: runID})
}

// PostingFields identifies a posting in log entries. Missing values are left out.
func PostingFields(p posting.Posting) []zap.Field {
	return StringFields(
		StringField{Key: FieldSource, Value: p.Platform},
		StringField{Key: FieldTitle, Value: p.Title},
		StringField{Key: FieldCompany, Value: p.Company},
		StringField{Key: FieldURL, Value: p.URL},
	)
}

// AIFields describes the model used for advisory notes.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}
