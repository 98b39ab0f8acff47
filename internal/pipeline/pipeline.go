package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/clipmod/toxcut/internal/ports"
	"github.com/clipmod/toxcut/internal/ports/adapters/detox"
	"github.com/clipmod/toxcut/internal/ports/adapters/ffmpeg"
	"github.com/clipmod/toxcut/internal/ports/adapters/supastore"
	"github.com/clipmod/toxcut/internal/ports/adapters/transcribe"
	"github.com/clipmod/toxcut/internal/usecase"
)

type Config struct {
	Input  string
	OutDir string

	Threshold  float64
	PaddingSec float64
	GapSec     float64
	Vocabulary []string

	Concurrency     int
	RetryAttempts   int
	OnClassifyError usecase.FailurePolicy

	FFmpegPath  string
	FFprobePath string

	TranscriberURL string
	ClassifierURL  string
	ClassifierKey  string

	StorageURL    string
	StorageKey    string
	StorageBucket string

	Log *logrus.Logger
}

func (c Config) Validate() error {
	if c.Input == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.Input); err != nil {
		return fmt.Errorf("stat input: %w", err)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0,1]")
	}
	if c.PaddingSec < 0 {
		return fmt.Errorf("padding must be >= 0")
	}
	if c.GapSec <= 0 {
		return fmt.Errorf("gap threshold must be > 0")
	}
	switch c.OnClassifyError {
	case usecase.PolicySkip, usecase.PolicyAbort:
	default:
		return fmt.Errorf("on-error must be %q or %q", usecase.PolicySkip, usecase.PolicyAbort)
	}
	if c.TranscriberURL == "" {
		return errors.New("transcriber URL is required")
	}
	if c.ClassifierURL == "" {
		return errors.New("classifier URL is required")
	}
	if c.StorageURL == "" || c.StorageBucket == "" {
		return errors.New("storage URL and bucket are required")
	}
	return nil
}

func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Log
	if logger == nil {
		logger = logrus.New()
	}
	log := logger.WithField("input", filepath.Base(cfg.Input))

	deps := usecase.Deps{
		Transcriber: transcribe.New(cfg.TranscriberURL),
		Classifier:  detox.New(cfg.ClassifierURL, cfg.ClassifierKey),
		Video:       ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath),
		Store:       supastore.New(cfg.StorageURL, cfg.StorageKey, cfg.StorageBucket),
	}
	uc := usecase.New(deps)

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runDir := buildRunOutDir(outDir, cfg.Input, time.Now().UTC())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	log.WithField("dir", runDir).Info("run directory ready")

	res, err := uc.Run(ctx, usecase.Input{
		MediaRef:        cfg.Input,
		Threshold:       cfg.Threshold,
		PaddingSec:      cfg.PaddingSec,
		GapSec:          cfg.GapSec,
		Vocabulary:      cfg.Vocabulary,
		Concurrency:     cfg.Concurrency,
		RetryAttempts:   cfg.RetryAttempts,
		OnClassifyError: cfg.OnClassifyError,
		WorkDir:         runDir,
		Log:             log,
	})
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(res.Manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(runDir, "manifest.json")
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"clips":    len(res.Manifest.Clips),
		"manifest": manifestPath,
	}).Info("run complete")
	for _, loc := range res.Locations {
		log.WithField("location", loc).Info("clip stored")
	}
	return nil
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.Transcriber = (*transcribe.Adapter)(nil)
var _ ports.Classifier = (*detox.Adapter)(nil)
var _ ports.Storage = (*supastore.Adapter)(nil)

func buildRunOutDir(outRoot, input string, now time.Time) string {
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	runSeed := fmt.Sprintf("%s|%d", input, now.UTC().UnixNano())
	suffix := hash(runSeed)[:6]
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}
