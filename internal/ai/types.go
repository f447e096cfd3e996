// Package ai provides types for the inference server client.
package ai

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable is wrapped by every error that means the
// inference server could not be reached, rejected the request, dropped
// the stream, or stopped sending data for longer than the read timeout.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// StatusError is returned when the inference server answers with a
// non-2xx status before any streaming begins.
type StatusError struct {
	StatusCode int
	Body       string // first 512 bytes
	Model      string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("inference server error (status %d): %s", e.StatusCode, e.Body)
}

// Unwrap makes StatusError match ErrUpstreamUnavailable.
func (e *StatusError) Unwrap() error {
	return ErrUpstreamUnavailable
}

// generateRequest is the request body sent to the inference server.
type generateRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
	Stream    bool   `json:"stream"`
}
