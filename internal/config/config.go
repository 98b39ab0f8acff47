// Package config loads collaborator endpoints and run defaults from an
// optional toxcut.yaml, with environment variables taking precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Service struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

type Storage struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Bucket string `yaml:"bucket"`
}

type Root struct {
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
	Services struct {
		Transcriber Service `yaml:"transcriber"`
		Classifier  Service `yaml:"classifier"`
	} `yaml:"services"`
	Storage Storage  `yaml:"storage"`
	Labels  []string `yaml:"labels"`
}

// Load reads path, or the first of the default locations when path is empty.
// A missing default file is not an error; env vars still apply on top.
func Load(path string) (*Root, error) {
	var cfg Root
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	} else {
		for _, p := range []string{"toxcut.yaml", filepath.Join("config", "toxcut.yaml")} {
			err := decodeFile(p, &cfg)
			if err == nil {
				break
			}
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}
	applyEnv(&cfg)
	return &cfg, nil
}

func decodeFile(path string, cfg *Root) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Root) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.Services.Transcriber.URL, "TOXCUT_TRANSCRIBER_URL")
	set(&cfg.Services.Transcriber.APIKey, "TOXCUT_TRANSCRIBER_KEY")
	set(&cfg.Services.Classifier.URL, "TOXCUT_CLASSIFIER_URL")
	set(&cfg.Services.Classifier.APIKey, "TOXCUT_CLASSIFIER_KEY")
	set(&cfg.Storage.URL, "SUPABASE_STORAGE_URL")
	set(&cfg.Storage.APIKey, "SUPABASE_SERVICE_KEY")
	set(&cfg.Storage.Bucket, "TOXCUT_BUCKET")
	set(&cfg.LogLevel, "TOXCUT_LOG_LEVEL")
	if v := os.Getenv("TOXCUT_LABELS"); v != "" {
		cfg.Labels = splitList(v)
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
