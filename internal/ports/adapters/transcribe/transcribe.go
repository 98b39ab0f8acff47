// Package transcribe is an HTTP client for a word-level transcription
// service with a submit-then-poll job API: POST /jobs with the media
// reference, then GET /jobs/{id} until the provider reports a terminal
// state. Completed jobs carry the token stream (word and punctuation items
// with fractional-second timestamps).
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clipmod/toxcut/internal/ports"
	"github.com/clipmod/toxcut/internal/types"
)

const defaultPollInterval = 3 * time.Second

type Adapter struct {
	baseURL string
	client  *http.Client
	poll    time.Duration
}

func New(baseURL string) *Adapter {
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
		poll:    defaultPollInterval,
	}
}

type submitRequest struct {
	Media string `json:"media"`
}

type jobResponse struct {
	ID     string        `json:"id"`
	Status string        `json:"status"`
	Reason string        `json:"reason,omitempty"`
	Tokens []types.Token `json:"tokens,omitempty"`
}

func (a *Adapter) Transcribe(ctx context.Context, mediaRef string) ([]types.Token, error) {
	job, err := a.submit(ctx, mediaRef)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case <-ctx.Done():
			return nil, &ports.TranscriptionError{Reason: "cancelled", Err: ctx.Err()}
		case <-time.After(a.poll):
		}

		st, err := a.status(ctx, job.ID)
		if err != nil {
			return nil, err
		}
		switch st.Status {
		case "completed":
			return st.Tokens, nil
		case "failed", "error":
			return nil, &ports.TranscriptionError{Reason: st.Reason}
		default:
			// queued / in_progress, keep polling
		}
	}
}

func (a *Adapter) submit(ctx context.Context, mediaRef string) (jobResponse, error) {
	body, err := json.Marshal(submitRequest{Media: mediaRef})
	if err != nil {
		return jobResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return jobResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var job jobResponse
	if err := a.do(req, &job); err != nil {
		return jobResponse{}, err
	}
	if job.ID == "" {
		return jobResponse{}, &ports.TranscriptionError{Reason: "provider returned no job id"}
	}
	return job, nil
}

func (a *Adapter) status(ctx context.Context, id string) (jobResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/jobs/"+id, nil)
	if err != nil {
		return jobResponse{}, err
	}
	var job jobResponse
	if err := a.do(req, &job); err != nil {
		return jobResponse{}, err
	}
	return job, nil
}

func (a *Adapter) do(req *http.Request, out *jobResponse) error {
	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(req.Context().Err(), context.Canceled) || errors.Is(req.Context().Err(), context.DeadlineExceeded) {
			return &ports.TranscriptionError{Reason: "cancelled", Err: req.Context().Err()}
		}
		return &ports.TranscriptionError{Reason: "request failed", Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(resp.Body)
		return &ports.TranscriptionError{
			Reason:    fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(rb), 400)),
			Transient: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ports.TranscriptionError{Reason: "malformed response", Err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
