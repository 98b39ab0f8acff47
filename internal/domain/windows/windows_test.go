package windows

import (
	"testing"

	"github.com/clipmod/toxcut/internal/types"
)

func toxic(start, end float64) types.ScoredSegment {
	return types.ScoredSegment{
		Segment: types.Segment{Start: start, End: end},
		Toxic:   true, Confidence: 0.9,
	}
}

func clean(start, end float64) types.ScoredSegment {
	return types.ScoredSegment{Segment: types.Segment{Start: start, End: end}}
}

func TestResolve_MergesOverlappingPaddedWindows(t *testing.T) {
	// [10,12] and [14,16] padded by 5 -> [5,17] and [9,21] -> one window [5,21].
	got, dropped := Resolve([]types.ScoredSegment{toxic(10, 12), toxic(14, 16)}, 5, 1000)
	if len(dropped) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", dropped)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 merged window, got %+v", got)
	}
	if got[0].Start != 5 || got[0].End != 21 {
		t.Fatalf("expected [5,21], got [%v,%v]", got[0].Start, got[0].End)
	}
	if len(got[0].Segments) != 2 {
		t.Fatalf("expected provenance of both segments, got %v", got[0].Segments)
	}
}

func TestResolve_KeepsDistantWindowsSeparate(t *testing.T) {
	got, _ := Resolve([]types.ScoredSegment{toxic(10, 11), toxic(200, 201)}, 5, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 windows, got %+v", got)
	}
	if got[0].Start != 5 || got[0].End != 16 || got[1].Start != 195 || got[1].End != 206 {
		t.Fatalf("unexpected windows: %+v", got)
	}
}

func TestResolve_ClampsStartAtZero(t *testing.T) {
	got, _ := Resolve([]types.ScoredSegment{toxic(0, 1)}, 5, 1000)
	if len(got) != 1 || got[0].Start != 0 || got[0].End != 6 {
		t.Fatalf("expected [0,6], got %+v", got)
	}
}

func TestResolve_ClampsEndAtDuration(t *testing.T) {
	got, _ := Resolve([]types.ScoredSegment{toxic(98, 99)}, 5, 100)
	if len(got) != 1 || got[0].End != 100 {
		t.Fatalf("expected end clamped to 100, got %+v", got)
	}
}

func TestResolve_TouchingWindowsCoalesce(t *testing.T) {
	// Padded intervals [0,10] and [10,20] touch exactly; non-strict comparison
	// must merge them rather than emit a zero-length gap.
	got, _ := Resolve([]types.ScoredSegment{toxic(5, 5), toxic(15, 15)}, 5, 100)
	if len(got) != 1 || got[0].Start != 0 || got[0].End != 20 {
		t.Fatalf("expected single [0,20], got %+v", got)
	}
}

func TestResolve_DropsDegenerateWindowAfterClamping(t *testing.T) {
	// Segment entirely past the media end: clamping yields start > end.
	got, dropped := Resolve([]types.ScoredSegment{toxic(120, 130)}, 2, 100)
	if len(got) != 0 {
		t.Fatalf("degenerate window must not be emitted: %+v", got)
	}
	if len(dropped) != 1 || dropped[0].Segment != 0 {
		t.Fatalf("expected one dropped diagnostic, got %+v", dropped)
	}
}

func TestResolve_EmptyAndNonToxicInputs(t *testing.T) {
	tests := []struct {
		name   string
		scored []types.ScoredSegment
	}{
		{"nil", nil},
		{"no toxic segments", []types.ScoredSegment{clean(1, 2), clean(3, 4)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dropped := Resolve(tt.scored, 5, 100)
			if len(got) != 0 || len(dropped) != 0 {
				t.Fatalf("expected empty result, got %+v / %+v", got, dropped)
			}
		})
	}
}

func TestResolve_OutputOrderedAndDisjoint(t *testing.T) {
	scored := []types.ScoredSegment{
		toxic(3, 4), toxic(3, 9), clean(10, 12), toxic(30, 31),
		toxic(31.5, 33), toxic(80, 81), toxic(90, 95),
	}
	got, _ := Resolve(scored, 2.5, 100)
	if len(got) == 0 {
		t.Fatalf("expected windows")
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].End >= got[i].Start {
			t.Fatalf("windows overlap or touch at %d: %+v", i, got)
		}
	}
}

func TestResolve_IdempotentOnOwnOutput(t *testing.T) {
	scored := []types.ScoredSegment{toxic(1, 2), toxic(4, 5), toxic(40, 42)}
	first, _ := Resolve(scored, 3, 100)

	again := make([]types.ScoredSegment, 0, len(first))
	for _, w := range first {
		again = append(again, toxic(w.Start, w.End))
	}
	second, _ := Resolve(again, 0, 100)

	if len(second) != len(first) {
		t.Fatalf("re-resolving changed window count: %+v vs %+v", first, second)
	}
	for i := range first {
		if first[i].Start != second[i].Start || first[i].End != second[i].End {
			t.Fatalf("re-resolving changed windows: %+v vs %+v", first, second)
		}
	}
}

func TestResolve_EqualStartsKeepSegmentOrder(t *testing.T) {
	got, _ := Resolve([]types.ScoredSegment{toxic(10, 11), toxic(10, 15)}, 0, 100)
	if len(got) != 1 {
		t.Fatalf("expected merge, got %+v", got)
	}
	if len(got[0].Segments) != 2 || got[0].Segments[0] != 0 || got[0].Segments[1] != 1 {
		t.Fatalf("provenance must keep original segment order: %v", got[0].Segments)
	}
}
