package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// watchdog cancels the request when no progress is made for timeout.
type watchdog struct {
	timeout time.Duration
	timer   *time.Timer
	expired atomic.Bool
}

func newWatchdog(timeout time.Duration, cancel context.CancelFunc) *watchdog {
	w := &watchdog{timeout: timeout}
	w.timer = time.AfterFunc(timeout, func() {
		w.expired.Store(true)
		cancel()
	})
	return w
}

func (w *watchdog) reset() { w.timer.Reset(w.timeout) }
func (w *watchdog) stop()  { w.timer.Stop() }
func (w *watchdog) fired() bool {
	return w.expired.Load()
}

// timeoutBody wraps a streaming response body. Every Read re-arms the
// watchdog, and read failures are reported as ErrUpstreamUnavailable.
type timeoutBody struct {
	rc       io.ReadCloser
	watchdog *watchdog
	cancel   context.CancelFunc
	closed   atomic.Bool
}

func (b *timeoutBody) Read(p []byte) (int, error) {
	b.watchdog.reset()
	n, err := b.rc.Read(p)
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}
	if b.watchdog.fired() {
		return n, fmt.Errorf("%w: no data received for %s", ErrUpstreamUnavailable, b.watchdog.timeout)
	}
	return n, fmt.Errorf("%w: stream interrupted: %v", ErrUpstreamUnavailable, err)
}

// Close releases the upstream connection. It is safe to call more than once.
func (b *timeoutBody) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	b.watchdog.stop()
	b.cancel()
	return b.rc.Close()
}
