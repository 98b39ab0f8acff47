package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/clipmod/toxcut/internal/config"
	"github.com/clipmod/toxcut/internal/pipeline"
	"github.com/clipmod/toxcut/internal/usecase"
)

func run(cmd *cobra.Command, input string) error {
	outDir, _ := cmd.Flags().GetString("out")
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	padding, _ := cmd.Flags().GetFloat64("padding")
	gap, _ := cmd.Flags().GetFloat64("gap")
	onError, _ := cmd.Flags().GetString("on-error")
	labels, _ := cmd.Flags().GetStringSlice("labels")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	retries, _ := cmd.Flags().GetInt("retries")
	cfgPath, _ := cmd.Flags().GetString("config")

	fileCfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if len(labels) == 0 {
		labels = fileCfg.Labels
	}

	logger := newLogger(fileCfg)

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Hour)
	defer cancel()

	cfg := pipeline.Config{
		Input:  absIn,
		OutDir: outDir,

		Threshold:  threshold,
		PaddingSec: padding,
		GapSec:     gap,
		Vocabulary: labels,

		Concurrency:     concurrency,
		RetryAttempts:   retries,
		OnClassifyError: usecase.FailurePolicy(onError),

		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",

		TranscriberURL: fileCfg.Services.Transcriber.URL,
		ClassifierURL:  fileCfg.Services.Classifier.URL,
		ClassifierKey:  fileCfg.Services.Classifier.APIKey,

		StorageURL:    fileCfg.Storage.URL,
		StorageKey:    fileCfg.Storage.APIKey,
		StorageBucket: fileCfg.Storage.Bucket,

		Log: logger,
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(ctx, cfg)
}

func newLogger(cfg *config.Root) *logrus.Logger {
	logger := logrus.New()
	if cfg.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}
