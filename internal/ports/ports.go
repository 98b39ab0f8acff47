package ports

import (
	"context"
	"io"

	"github.com/clipmod/toxcut/internal/types"
)

// Transcriber converts a media reference into a timed token stream.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaRef string) ([]types.Token, error)
}

// Classifier scores a piece of UTF-8 text. Implementations may truncate
// overlong text to a model-specific maximum; callers pass text through as-is.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]types.LabelScore, error)
}

// Storage is durable object storage for finished clips.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader) (location string, err error)
	Get(ctx context.Context, location string) ([]byte, error)
}

// VideoTool trims media and probes its duration.
type VideoTool interface {
	Trim(ctx context.Context, source string, startSec, endSec float64, out string) error
	ProbeDuration(ctx context.Context, source string) (float64, error)
}
