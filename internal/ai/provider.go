package ai

import (
	"context"
	"io"
)

// Streamer opens a streaming completion for a prompt. The returned body
// yields newline-delimited JSON and must be closed by the caller.
//
// Client is the production implementation; tests substitute fakes.
type Streamer interface {
	Stream(ctx context.Context, prompt string, tokenLimit int) (io.ReadCloser, error)
}
