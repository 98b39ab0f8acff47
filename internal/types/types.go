package types

// TokenKind discriminates transcript items.
type TokenKind string

const (
	TokenWord        TokenKind = "word"
	TokenPunctuation TokenKind = "punctuation"
)

// Token is a single timed unit from the transcription provider. Punctuation
// tokens may carry no timing of their own; they inherit the timing of the
// segment they close.
type Token struct {
	Kind  TokenKind `json:"kind"`
	Text  string    `json:"text"`
	Start *float64  `json:"start,omitempty"`
	End   *float64  `json:"end,omitempty"`
}

// Timed reports whether the token carries its own start/end timestamps.
func (t Token) Timed() bool { return t.Start != nil && t.End != nil }

// Segment is a contiguous, time-bounded span of transcript text. Segments
// built from one transcript are start-ordered and non-overlapping.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// LabelScore is one classifier verdict for a piece of text.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ScoredSegment is a segment plus its thresholded toxicity verdict.
// Never mutated after creation.
type ScoredSegment struct {
	Segment
	Toxic      bool
	Confidence float64
}

// ClipWindow is a final disjoint time interval selected for extraction.
// Segments holds the indices of the scored segments the window covers,
// kept for traceability.
type ClipWindow struct {
	Start    float64
	End      float64
	Segments []int
}

type Manifest struct {
	Input     string         `json:"input"`
	Threshold float64        `json:"threshold"`
	Padding   float64        `json:"padding_sec"`
	Clips     []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	ID         string  `json:"id"`
	StartSec   float64 `json:"start_sec"`
	EndSec     float64 `json:"end_sec"`
	Confidence float64 `json:"confidence"`
	Segments   []int   `json:"segments"`
	File       string  `json:"file"`
	Location   string  `json:"location"`
}
