package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldCompany        = "company"
	FieldProfileID      = "profile_id"
	FieldEmbeddingModel = "embedding_model"
)

// WithFields returns logger with fields attached, or a no-op logger when logger is nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		return zap.NewNop().With(fields...)
	}
	return logger.With(fields...)
}

// WithCompany tags log entries with the company being processed. Blank names add nothing.
func WithCompany(logger *zap.Logger, company string) *zap.Logger {
	return withString(logger, FieldCompany, company)
}

func WithEmbeddingModel(logger *zap.Logger, model string) *zap.Logger {
	return withString(logger, FieldEmbeddingModel, model)
}

func withString(logger *zap.Logger, key, value string) *zap.Logger {
	value = strings.TrimSpace(value)
	if value == "" {
		return WithFields(logger)
	}
	return WithFields(logger, zap.String(key, value))
}
