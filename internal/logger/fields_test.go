package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithEmbeddingModelIgnoresBlank(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithEmbeddingModel(zap.New(core), "   ").Info("no model")

	if _, ok := observed.All()[0].ContextMap()[FieldEmbeddingModel]; ok {
		t.Fatalf("did not expect model field for blank value")
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestWithCompany(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCompany(zap.New(core), " Huawei Cloud Türkiye ").Info("test log")
	WithCompany(zap.New(core), "").Info("no company")

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if got := entries[0].ContextMap()[FieldCompany]; got != "Huawei Cloud Türkiye" {
		t.Fatalf("unexpected company field: %q", got)
	}

	if _, ok := entries[1].ContextMap()[FieldCompany]; ok {
		t.Fatalf("did not expect company field for empty value")
	}
}

func TestWithEmbeddingModel(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithEmbeddingModel(zap.New(core), "text-embedding-004").Info("test log")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldEmbeddingModel] != "text-embedding-004" {
		t.Fatalf("unexpected model field: %q", ctx[FieldEmbeddingModel])
	}

	if WithEmbeddingModel(nil, "m") == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
}
