package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clipmod/toxcut/internal/ports"
	"github.com/clipmod/toxcut/internal/types"
)

func newTestAdapter(url string) *Adapter {
	a := New(url)
	a.poll = time.Millisecond
	return a
}

func TestTranscribe_PollsUntilCompleted(t *testing.T) {
	var polls int32
	start, end := 0.5, 1.0
	tokens := []types.Token{
		{Kind: types.TokenWord, Text: "hey", Start: &start, End: &end},
		{Kind: types.TokenPunctuation, Text: "."},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/jobs":
			json.NewEncoder(w).Encode(jobResponse{ID: "j1", Status: "queued"})
		case r.Method == http.MethodGet && r.URL.Path == "/jobs/j1":
			if atomic.AddInt32(&polls, 1) < 3 {
				json.NewEncoder(w).Encode(jobResponse{ID: "j1", Status: "in_progress"})
				return
			}
			json.NewEncoder(w).Encode(jobResponse{ID: "j1", Status: "completed", Tokens: tokens})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	got, err := newTestAdapter(srv.URL).Transcribe(context.Background(), "s3://in.mp4")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if len(got) != 2 || got[0].Text != "hey" || !got[0].Timed() {
		t.Fatalf("unexpected tokens: %+v", got)
	}
	if atomic.LoadInt32(&polls) < 3 {
		t.Fatalf("expected at least 3 polls, got %d", polls)
	}
}

func TestTranscribe_FailedJobCarriesProviderReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewEncoder(w).Encode(jobResponse{ID: "j2", Status: "queued"})
			return
		}
		json.NewEncoder(w).Encode(jobResponse{ID: "j2", Status: "failed", Reason: "unsupported codec"})
	}))
	defer srv.Close()

	_, err := newTestAdapter(srv.URL).Transcribe(context.Background(), "in.mp4")
	var te *ports.TranscriptionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TranscriptionError, got %v", err)
	}
	if te.Reason != "unsupported codec" {
		t.Fatalf("expected provider reason, got %q", te.Reason)
	}
}

func TestTranscribe_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestAdapter(srv.URL).Transcribe(context.Background(), "in.mp4")
	var te *ports.TranscriptionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TranscriptionError, got %v", err)
	}
	if !te.Transient {
		t.Fatalf("5xx must be transient: %v", te)
	}
}

func TestTranscribe_MissingJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(jobResponse{Status: "queued"})
	}))
	defer srv.Close()

	_, err := newTestAdapter(srv.URL).Transcribe(context.Background(), "in.mp4")
	if err == nil {
		t.Fatalf("expected error for missing job id")
	}
}
