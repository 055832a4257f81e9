package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrKindCredentialMissing ErrorKind = "CredentialMissing"
	ErrKindFetch             ErrorKind = "FetchError"
	ErrKindUpload            ErrorKind = "UploadError"
	ErrKindPollTimeout       ErrorKind = "PollTimeout"
	ErrKindParse             ErrorKind = "ParseError"
	ErrKindBackend           ErrorKind = "BackendError"
)

var ErrCredentialMissing = errors.New("gemini api key missing")

// PipelineError is returned by the scoring pipeline. Kind tells which stage
// failed; Err carries the cause.
type PipelineError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func newPipelineError(kind ErrorKind, op string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the pipeline stage from err, or "" when err did not come
// from the pipeline.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
