// Package supastore persists clips in Supabase Storage.
package supastore

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	storage_go "github.com/supabase-community/storage-go"

	"github.com/clipmod/toxcut/internal/ports"
)

type Adapter struct {
	client *storage_go.Client
	bucket string
}

// New builds a storage adapter for one bucket. baseURL is the project's
// storage endpoint (https://<project>.supabase.co/storage/v1).
func New(baseURL, apiKey, bucket string) *Adapter {
	return &Adapter{
		client: storage_go.NewClient(strings.TrimRight(baseURL, "/"), apiKey, nil),
		bucket: bucket,
	}
}

// Put uploads the object and returns its stable location, bucket/key.
// storage-go does not take a context; cancellation is checked up front.
func (a *Adapter) Put(ctx context.Context, key string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &ports.StorageError{Op: "put", Key: key, Err: err}
	}
	if _, err := a.client.UploadFile(a.bucket, key, r); err != nil {
		return "", &ports.StorageError{Op: "put", Key: key, Retryable: retryable(err), Err: err}
	}
	return a.bucket + "/" + key, nil
}

func (a *Adapter) Get(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ports.StorageError{Op: "get", Key: location, Err: err}
	}
	key := strings.TrimPrefix(location, a.bucket+"/")
	b, err := a.client.DownloadFile(a.bucket, key)
	if err != nil {
		return nil, &ports.StorageError{Op: "get", Key: key, Retryable: retryable(err), Err: err}
	}
	return b, nil
}

// retryable classifies storage failures worth another attempt. storage-go
// surfaces API failures as plain errors carrying the HTTP status text, so
// transport timeouts are checked structurally and the rest by status marker.
func retryable(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "too many requests", "500", "502", "503", "504", "timeout", "connection reset"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
