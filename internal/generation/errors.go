package generation

import (
	"errors"
	"fmt"
)

// ErrCanceled reports that the caller cancelled the generation. It is a terminal
// outcome, not a failure: no further strategies run after it.
var ErrCanceled = errors.New("generation canceled")

// UpstreamError is a non-2xx answer from the proxy or the direct upstream.
type UpstreamError struct {
	Source     string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Source, e.StatusCode, e.Body)
}

// ConfigError reports that a strategy cannot run with the available configuration.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// DecodeError reports a strategy result that could not be turned into points.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// GenerationError is returned when every strategy failed. It wraps the failure of the last one.
type GenerationError struct {
	Attempts []string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempt(s): %v", len(e.Attempts), e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
