package windows

import (
	"sort"

	"github.com/clipmod/toxcut/internal/types"
)

// Dropped describes a padded window discarded because clamping to the media
// bounds left it empty. Reported as a diagnostic, never emitted as a clip.
type Dropped struct {
	Segment int
	Start   float64
	End     float64
}

// Resolve expands each toxic segment by padding seconds on both sides, clamps
// the result to [0, duration], and merges touching or overlapping intervals
// into the final disjoint clip-window list. Comparison is non-strict so
// adjacent padded windows coalesce instead of producing zero-length gaps.
//
// Input order is by start time; equal starts settle by original segment
// index, so output is deterministic. durationSec <= 0 means the media length
// is unknown and only the lower bound is clamped.
func Resolve(scored []types.ScoredSegment, paddingSec, durationSec float64) ([]types.ClipWindow, []Dropped) {
	if paddingSec < 0 {
		paddingSec = 0
	}

	type interval struct {
		start, end float64
		seg        int
	}
	var (
		raw     []interval
		dropped []Dropped
	)
	for i, s := range scored {
		if !s.Toxic {
			continue
		}
		start := s.Start - paddingSec
		if start < 0 {
			start = 0
		}
		end := s.End + paddingSec
		if durationSec > 0 && end > durationSec {
			end = durationSec
		}
		if start > end {
			dropped = append(dropped, Dropped{Segment: i, Start: start, End: end})
			continue
		}
		raw = append(raw, interval{start: start, end: end, seg: i})
	}
	if len(raw) == 0 {
		return nil, dropped
	}

	// Stable: equal starts keep original segment order.
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].start < raw[j].start })

	out := []types.ClipWindow{{Start: raw[0].start, End: raw[0].end, Segments: []int{raw[0].seg}}}
	for _, iv := range raw[1:] {
		cur := &out[len(out)-1]
		if iv.start <= cur.End {
			if iv.end > cur.End {
				cur.End = iv.end
			}
			cur.Segments = append(cur.Segments, iv.seg)
			continue
		}
		out = append(out, types.ClipWindow{Start: iv.start, End: iv.end, Segments: []int{iv.seg}})
	}
	return out, dropped
}
