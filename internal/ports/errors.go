package ports

import "fmt"

// TranscriptionError reports a failed transcription with the provider's
// reason. Transient failures (throttling, timeouts) may be retried.
type TranscriptionError struct {
	Reason    string
	Transient bool
	Err       error
}

func (e *TranscriptionError) Error() string {
	if e.Reason != "" {
		return "transcription failed: " + e.Reason
	}
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// ClassifierError reports a failed classifier call. Transient marks
// throttling and server-side failures worth retrying.
type ClassifierError struct {
	Transient bool
	Err       error
}

func (e *ClassifierError) Error() string { return fmt.Sprintf("classifier: %v", e.Err) }

func (e *ClassifierError) Unwrap() error { return e.Err }

// StorageError reports a failed storage operation.
type StorageError struct {
	Op        string
	Key       string
	Retryable bool
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// TrimError reports a failed media trim.
type TrimError struct {
	Source   string
	StartSec float64
	EndSec   float64
	Err      error
}

func (e *TrimError) Error() string {
	return fmt.Sprintf("trim %s [%.3f, %.3f]: %v", e.Source, e.StartSec, e.EndSec, e.Err)
}

func (e *TrimError) Unwrap() error { return e.Err }
