package segments

import (
	"fmt"
	"strings"

	"github.com/clipmod/toxcut/internal/types"
)

// DefaultGapThreshold is the idle time in seconds between consecutive tokens
// that forces a segment boundary even without terminal punctuation.
const DefaultGapThreshold = 1.5

// MalformedTokenError identifies an input token the builder refuses to
// repair. The index points into the original token stream.
type MalformedTokenError struct {
	Index  int
	Reason string
}

func (e *MalformedTokenError) Error() string {
	return fmt.Sprintf("malformed token at index %d: %s", e.Index, e.Reason)
}

// Build assembles an ordered token stream into sentence- and silence-bounded
// segments. A boundary opens at the first word token, after each
// sentence-terminal punctuation mark, and whenever the silence between
// consecutive tokens exceeds gapThreshold seconds. Punctuation attaches to
// the segment it closes with no preceding space and contributes no timing of
// its own unless it carries one.
//
// A stream with no word tokens yields an empty slice, not a single empty
// segment.
func Build(tokens []types.Token, gapThreshold float64) ([]types.Segment, error) {
	if gapThreshold <= 0 {
		gapThreshold = DefaultGapThreshold
	}

	var (
		out   []types.Segment
		text  strings.Builder
		start float64
		end   float64
		open  bool
	)
	flush := func() {
		if !open {
			return
		}
		out = append(out, types.Segment{Start: start, End: end, Text: text.String()})
		text.Reset()
		open = false
	}

	for i, tok := range tokens {
		if tok.Timed() && *tok.End < *tok.Start {
			return nil, &MalformedTokenError{Index: i, Reason: "end time precedes start time"}
		}
		switch tok.Kind {
		case types.TokenWord:
			if !tok.Timed() {
				return nil, &MalformedTokenError{Index: i, Reason: "word token without timing"}
			}
			if open && *tok.Start-end > gapThreshold {
				flush()
			}
			if open {
				text.WriteByte(' ')
			} else {
				start = *tok.Start
				open = true
			}
			text.WriteString(tok.Text)
			end = *tok.End
		case types.TokenPunctuation:
			// Punctuation alone never opens a segment.
			if !open {
				continue
			}
			text.WriteString(tok.Text)
			if tok.Timed() && *tok.End > end {
				end = *tok.End
			}
			if sentenceTerminal(tok.Text) {
				flush()
			}
		default:
			return nil, &MalformedTokenError{Index: i, Reason: fmt.Sprintf("unknown kind %q", tok.Kind)}
		}
	}
	flush()
	return out, nil
}

func sentenceTerminal(p string) bool {
	p = strings.TrimSpace(p)
	if p == "" {
		return false
	}
	switch p[len(p)-1] {
	case '.', '?', '!':
		return true
	}
	return false
}
