package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clipmod/toxcut/internal/usecase"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildRunOutDir("out", "/tmp/My Cool.Video.mp4", now)
	base := filepath.Base(got)
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if !strings.HasPrefix(base, "my-cool-video-20260212-103045Z-") {
		t.Fatalf("unexpected run dir format: %s", base)
	}
	if len(base) != len("my-cool-video-20260212-103045Z-")+6 {
		t.Fatalf("unexpected run dir suffix length: %s", base)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	input := filepath.Join(t.TempDir(), "in.mp4")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	valid := Config{
		Input:           input,
		Threshold:       0.8,
		PaddingSec:      5,
		GapSec:          1.5,
		OnClassifyError: usecase.PolicySkip,
		TranscriberURL:  "http://transcriber",
		ClassifierURL:   "http://classifier",
		StorageURL:      "http://storage",
		StorageBucket:   "clips",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing input", func(c *Config) { c.Input = "" }},
		{"input does not exist", func(c *Config) { c.Input = filepath.Join(t.TempDir(), "nope.mp4") }},
		{"threshold above one", func(c *Config) { c.Threshold = 1.5 }},
		{"negative padding", func(c *Config) { c.PaddingSec = -1 }},
		{"zero gap", func(c *Config) { c.GapSec = 0 }},
		{"bad policy", func(c *Config) { c.OnClassifyError = "panic" }},
		{"no transcriber", func(c *Config) { c.TranscriberURL = "" }},
		{"no classifier", func(c *Config) { c.ClassifierURL = "" }},
		{"no bucket", func(c *Config) { c.StorageBucket = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
