package toxicity

import (
	"context"
	"fmt"
	"strings"

	"github.com/clipmod/toxcut/internal/ports"
	"github.com/clipmod/toxcut/internal/types"
)

// DefaultVocabulary covers classifiers whose positive label is literally
// "toxic" (or a phrasing containing it, e.g. "severe_toxicity"). Deployments
// with differently named labels override it.
var DefaultVocabulary = []string{"toxic"}

// ClassificationError wraps a classifier failure for one segment. The caller
// decides whether to retry, skip the segment as non-toxic, or abort the run.
type ClassificationError struct {
	SegmentIndex int
	Err          error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify segment %d: %v", e.SegmentIndex, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// Gate reduces classifier output per segment to a boolean toxic verdict
// against a confidence threshold.
type Gate struct {
	classifier ports.Classifier
	vocabulary []string
	threshold  float64
}

func NewGate(c ports.Classifier, vocabulary []string, threshold float64) *Gate {
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}
	return &Gate{classifier: c, vocabulary: vocabulary, threshold: threshold}
}

// Evaluate scores one segment. Text is passed to the classifier as-is;
// truncation to a model maximum is the classifier's business.
func (g *Gate) Evaluate(ctx context.Context, index int, seg types.Segment) (types.ScoredSegment, error) {
	labels, err := g.classifier.Classify(ctx, seg.Text)
	if err != nil {
		return types.ScoredSegment{}, &ClassificationError{SegmentIndex: index, Err: err}
	}
	toxic, confidence := Decide(labels, g.vocabulary, g.threshold)
	return types.ScoredSegment{Segment: seg, Toxic: toxic, Confidence: confidence}, nil
}

// Decide reduces classifier output to (toxic, confidence). The flag is
// exactly (max score among vocabulary-matched labels >= threshold); when no
// label matches the vocabulary the result is (false, 0).
func Decide(labels []types.LabelScore, vocabulary []string, threshold float64) (bool, float64) {
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}
	var best float64
	matched := false
	for _, ls := range labels {
		if !matches(ls.Label, vocabulary) {
			continue
		}
		matched = true
		if ls.Score > best {
			best = ls.Score
		}
	}
	if !matched {
		return false, 0
	}
	return best >= threshold, best
}

func matches(label string, vocabulary []string) bool {
	l := strings.ToLower(label)
	for _, v := range vocabulary {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if strings.Contains(l, v) {
			return true
		}
	}
	return false
}
