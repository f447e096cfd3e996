// Package audit assembles the events of one upstream stream into a single
// best-effort result.
package audit

import (
	"github.com/arin/codeaudit/internal/stream"
)

// ErrorMarker is appended to the text when the stream fails before the
// upstream signalled completion.
const ErrorMarker = "\n\n[Error: the analysis was interrupted before it finished. The response above may be incomplete.]"

// EventSource is the pull interface Aggregate consumes. *stream.Parser
// satisfies it.
type EventSource interface {
	Next() bool
	Event() stream.Event
	Err() error
}

// Warning describes a line that could not be parsed.
type Warning struct {
	Line int    `json:"line"`
	Raw  string `json:"raw"`
}

// Result is the outcome of aggregating one stream.
type Result struct {
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Warnings  []Warning `json:"warnings,omitempty"`
	// Interrupted is set when the stream ended with a transport error
	// rather than a clean EOF.
	Interrupted bool `json:"interrupted,omitempty"`
}

// Option configures Aggregate.
type Option func(*aggregator)

// WithFragmentHook calls fn with each text fragment as it is appended.
func WithFragmentHook(fn func(string)) Option {
	return func(a *aggregator) {
		a.onFragment = fn
	}
}

// WithWarningHook calls fn for each malformed line.
func WithWarningHook(fn func(Warning)) Option {
	return func(a *aggregator) {
		a.onWarning = fn
	}
}

type state int

const (
	collecting state = iota
	completed
)

type aggregator struct {
	state      state
	text       []byte
	warnings   []Warning
	onFragment func(string)
	onWarning  func(Warning)
}

// Aggregate consumes src until a Done event or the end of the stream.
// It never fails: a transport error is folded into the result as
// ErrorMarker and Completed=false. After Done, src is left undrained.
func Aggregate(src EventSource, opts ...Option) Result {
	a := &aggregator{state: collecting}
	for _, opt := range opts {
		opt(a)
	}

	for a.state == collecting && src.Next() {
		a.apply(src.Event())
	}

	res := Result{
		Completed: a.state == completed,
		Warnings:  a.warnings,
	}
	if !res.Completed && src.Err() != nil {
		a.text = append(a.text, ErrorMarker...)
		res.Interrupted = true
	}
	res.Text = string(a.text)
	return res
}

func (a *aggregator) apply(ev stream.Event) {
	switch ev.Kind {
	case stream.TextFragment:
		a.text = append(a.text, ev.Text...)
		if a.onFragment != nil {
			a.onFragment(ev.Text)
		}
	case stream.Done:
		a.state = completed
	case stream.Malformed:
		w := Warning{Line: ev.Line, Raw: ev.Raw}
		a.warnings = append(a.warnings, w)
		if a.onWarning != nil {
			a.onWarning(w)
		}
	}
}
