package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  session_id  ", Value: "  abc  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].Key != "session_id" || fields[0].String != "abc" {
		t.Fatalf("unexpected field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	enriched := WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}
	enriched.Info("another log")
}

func TestSessionFields(t *testing.T) {
	fields := SessionFields("abc", "")
	if len(fields) != 1 || fields[0].Key != FieldSession {
		t.Fatalf("unexpected fields: %+v", fields)
	}

	core, observed := observer.New(zapcore.InfoLevel)
	WithSession(zap.New(core), "abc", "info_collection").Info("turn processed")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx[FieldSession] != "abc" || ctx[FieldStage] != "info_collection" {
		t.Fatalf("unexpected context: %v", ctx)
	}
}

func TestWithProvider(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	WithProvider(zap.New(core), "gemini", "model-x").Info("ready")

	ctx := observed.All()[0].ContextMap()
	if ctx[FieldProvider] != "gemini" || ctx[FieldModel] != "model-x" {
		t.Fatalf("unexpected context: %v", ctx)
	}

	if fields := ProviderFields("", ""); len(fields) != 0 {
		t.Fatalf("expected no fields, got %d", len(fields))
	}
}
