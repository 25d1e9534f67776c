package config

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidate_Table(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{"min above max", func(c *Config) { c.MinSegmentSec = 70 }, "exceeds max"},
		{"default outside clamp", func(c *Config) { c.DefaultSegmentSec = 5 }, "outside"},
		{"zero clips", func(c *Config) { c.ClipsPerVideo = 0 }, "ClipsPerVideo"},
		{"bad region", func(c *Config) { c.Region = "IDN" }, "Region"},
		{"no output dir", func(c *Config) { c.OutputDir = "" }, "OutputDir"},
		{"aspect not 9:16", func(c *Config) { c.TargetAspect = "16:9" }, "aspect"},
		{"no keywords", func(c *Config) { c.HookKeywords = nil }, "keyword"},
		{"zero timeout", func(c *Config) { c.PerJobTimeout = 0 }, "timeout"},
		{"too many workers", func(c *Config) { c.MaxConcurrency = 64 }, "MaxConcurrency"},
		{"source band inverted", func(c *Config) { c.MinSourceSec = 5000 }, "source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected ConfigError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Fatalf("error %q does not mention %q", err.Error(), tt.wantSub)
			}
		})
	}
}

func TestValidate_AcceptsTunedConfig(t *testing.T) {
	cfg := Default()
	cfg.MinSegmentSec = 10
	cfg.MaxSegmentSec = 45
	cfg.DefaultSegmentSec = 20
	cfg.PerJobTimeout = 30 * time.Second
	cfg.MaxConcurrency = 4
	if err := cfg.Validate(); err != nil {
		t.Fatalf("tuned config must validate: %v", err)
	}
}

func TestGetenvDefault(t *testing.T) {
	t.Setenv("TRENDCUT_TEST_KEY", "set")
	if got := getenvDefault("TRENDCUT_TEST_KEY", "def"); got != "set" {
		t.Fatalf("expected env value, got %q", got)
	}
	if got := getenvDefault("TRENDCUT_TEST_MISSING", "def"); got != "def" {
		t.Fatalf("expected default, got %q", got)
	}
}
