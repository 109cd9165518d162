package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	if Named("test") == nil {
		t.Fatal("named logger is nil")
	}
}

func TestNewWritesStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf), WithFormat(FormatJSON), WithSource(false))

	l.Named("rasch").Info(context.Background(), "converged", Int("iterations", 12), Float64("max_change", 1e-7))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("record is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "converged" {
		t.Errorf("unexpected msg %v", rec["msg"])
	}
	if rec["component"] != "rasch" {
		t.Errorf("expected component=rasch, got %v", rec["component"])
	}
	if rec["iterations"] != float64(12) {
		t.Errorf("expected iterations=12, got %v", rec["iterations"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	lv := &slog.LevelVar{}
	lv.Set(slog.LevelWarn)
	l := New(WithWriter(&buf), WithLevelVar(lv))

	ctx := context.Background()
	l.Debug(ctx, "hidden")
	l.Info(ctx, "hidden too")
	l.Warn(ctx, "visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug/info records leaked: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn record missing: %q", out)
	}
	if !strings.Contains(out, "source=") {
		t.Errorf("expected source attribute: %q", out)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithWriter(&buf), WithSource(false)).With(String("run_id", "r-1"))
	l.Error(context.Background(), "failed")
	if !strings.Contains(buf.String(), "run_id=r-1") {
		t.Errorf("expected bound field, got %q", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	l.Error(context.Background(), "nothing")
	l.Named("x").With(Bool("ok", true)).Warn(context.Background(), "still nothing")
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := SetLevelString("nope"); err == nil {
		t.Error("expected SetLevelString to reject unknown level")
	}
}
