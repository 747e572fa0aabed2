package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/davenham/homesignal/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewAppliesLevel(t *testing.T) {
	logger := New(config.LoggingConfig{
		Level:  "warn",
		Format: "json",
		Output: "stderr",
	}, "test")

	ctx := context.Background()
	if logger.Enabled(ctx, slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	if !logger.Enabled(ctx, slog.LevelWarn) {
		t.Error("warn disabled at warn level")
	}
	if !logger.Enabled(ctx, slog.LevelError) {
		t.Error("error disabled at warn level")
	}
}

func TestWithReturnsIndependentLogger(t *testing.T) {
	base := Default()
	child := base.With("component", "command")

	if child == nil || child.Logger == nil {
		t.Fatal("With() returned nil logger")
	}
	if child == base {
		t.Error("With() returned the receiver, want a new logger")
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil || logger.Logger == nil {
		t.Fatal("Default() returned nil logger")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("default logger should log at info")
	}
}
