package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/clipmod/toxcut/internal/domain/segments"
	"github.com/clipmod/toxcut/internal/domain/toxicity"
	"github.com/clipmod/toxcut/internal/domain/windows"
	"github.com/clipmod/toxcut/internal/ports"
	"github.com/clipmod/toxcut/internal/types"
)

type Deps struct {
	Transcriber ports.Transcriber
	Classifier  ports.Classifier
	Video       ports.VideoTool
	Store       ports.Storage
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

// FailurePolicy decides what happens when classifying one segment still
// fails after the retry budget is spent.
type FailurePolicy string

const (
	// PolicySkip treats the failed segment as non-toxic and continues.
	PolicySkip FailurePolicy = "skip"
	// PolicyAbort stops the whole run on the first exhausted segment.
	PolicyAbort FailurePolicy = "abort"
)

type Input struct {
	MediaRef   string
	Threshold  float64
	PaddingSec float64
	GapSec     float64
	Vocabulary []string

	// Concurrency caps in-flight classifier calls. Results are restored to
	// original segment order before window resolution.
	Concurrency     int
	RetryAttempts   int
	RetryBackoff    time.Duration
	OnClassifyError FailurePolicy

	// WorkDir receives trimmed clip files before upload.
	WorkDir string
	Log     *logrus.Entry
}

type Result struct {
	Manifest  types.Manifest
	Locations []string
}

// Run executes one extraction pass: transcribe, segment, classify, resolve
// windows, then trim and persist one clip per window. Fatal errors abort the
// run with no partial manifest.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	log := in.Log
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}

	tokens, err := u.d.Transcriber.Transcribe(ctx, in.MediaRef)
	if err != nil {
		return Result{}, err
	}
	log.WithField("tokens", len(tokens)).Info("transcript received")

	segs, err := segments.Build(tokens, in.GapSec)
	if err != nil {
		return Result{}, err
	}
	log.WithField("segments", len(segs)).Info("segments built")

	durationSec, err := u.d.Video.ProbeDuration(ctx, in.MediaRef)
	if err != nil {
		return Result{}, err
	}

	scored, err := u.classifyAll(ctx, in, log, segs)
	if err != nil {
		return Result{}, err
	}

	wins, dropped := windows.Resolve(scored, in.PaddingSec, durationSec)
	for _, d := range dropped {
		log.WithFields(logrus.Fields{
			"segment": d.Segment, "start": d.Start, "end": d.End,
		}).Warn("dropping degenerate window after clamping")
	}
	log.WithField("windows", len(wins)).Info("clip windows resolved")

	clips, locations, err := u.materialize(ctx, in, scored, wins)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Manifest: types.Manifest{
			Input:     in.MediaRef,
			Threshold: in.Threshold,
			Padding:   in.PaddingSec,
			Clips:     clips,
		},
		Locations: locations,
	}, nil
}

func (u Usecase) classifyAll(ctx context.Context, in Input, log *logrus.Entry, segs []types.Segment) ([]types.ScoredSegment, error) {
	if len(segs) == 0 {
		return nil, nil
	}
	gate := toxicity.NewGate(u.d.Classifier, in.Vocabulary, in.Threshold)

	workers := in.Concurrency
	if workers <= 0 {
		workers = 4
	}
	if workers > len(segs) {
		workers = len(segs)
	}

	scored := make([]types.ScoredSegment, len(segs))
	errs := make([]error, len(segs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range segs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			scored[i], errs[i] = u.classifyOne(ctx, gate, in, i, segs[i])
		}(i)
	}
	wg.Wait()

	// Cancellation is fatal regardless of the skip policy: proceeding would
	// silently emit a subset of clips for an incompletely scored transcript.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, err := range errs {
		if err == nil {
			continue
		}
		if in.OnClassifyError == PolicySkip {
			log.WithField("segment", i).WithError(err).Warn("classification failed, treating segment as non-toxic")
			scored[i] = types.ScoredSegment{Segment: segs[i]}
			continue
		}
		return nil, err
	}
	return scored, nil
}

func (u Usecase) classifyOne(ctx context.Context, gate *toxicity.Gate, in Input, index int, seg types.Segment) (types.ScoredSegment, error) {
	attempts := in.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := in.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	var lastErr error
	for a := 0; a < attempts; a++ {
		if a > 0 {
			select {
			case <-ctx.Done():
				return types.ScoredSegment{}, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		ss, err := gate.Evaluate(ctx, index, seg)
		if err == nil {
			return ss, nil
		}
		lastErr = err

		var ce *ports.ClassifierError
		if errors.As(err, &ce) && !ce.Transient {
			break
		}
	}
	return types.ScoredSegment{}, lastErr
}

func (u Usecase) materialize(ctx context.Context, in Input, scored []types.ScoredSegment, wins []types.ClipWindow) ([]types.ManifestClip, []string, error) {
	if len(wins) == 0 {
		return nil, nil, nil
	}
	clipsDir := filepath.Join(in.WorkDir, "clips")
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		return nil, nil, err
	}

	clips := make([]types.ManifestClip, 0, len(wins))
	locations := make([]string, 0, len(wins))
	for i, w := range wins {
		id := fmt.Sprintf("%03d", i+1)
		clipPath := filepath.Join(clipsDir, id+".mp4")
		if err := u.d.Video.Trim(ctx, in.MediaRef, w.Start, w.End, clipPath); err != nil {
			return nil, nil, err
		}

		f, err := os.Open(clipPath)
		if err != nil {
			return nil, nil, err
		}
		key := "clips/" + uuid.NewString() + ".mp4"
		location, err := u.d.Store.Put(ctx, key, f)
		f.Close()
		if err != nil {
			return nil, nil, err
		}

		clips = append(clips, types.ManifestClip{
			ID:         id,
			StartSec:   w.Start,
			EndSec:     w.End,
			Confidence: peakConfidence(scored, w.Segments),
			Segments:   w.Segments,
			File:       filepath.ToSlash(filepath.Join("clips", id+".mp4")),
			Location:   location,
		})
		locations = append(locations, location)
	}
	return clips, locations, nil
}

func peakConfidence(scored []types.ScoredSegment, indices []int) float64 {
	var best float64
	for _, i := range indices {
		if i >= 0 && i < len(scored) && scored[i].Confidence > best {
			best = scored[i].Confidence
		}
	}
	return best
}
