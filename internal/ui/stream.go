// stream.go renders audit text to the terminal as it streams in from
// the inference server.

package ui

import (
	"fmt"
	"io"
	"strings"
)

// StreamPrinter writes text fragments to w as they arrive, indenting
// every line with prefix.
type StreamPrinter struct {
	w          io.Writer
	prefix     string
	atLineHead bool
	wrote      bool
	lastNL     bool
}

// NewStreamPrinter returns a printer that writes to w.
func NewStreamPrinter(w io.Writer, prefix string) *StreamPrinter {
	return &StreamPrinter{w: w, prefix: prefix, atLineHead: true}
}

// Write prints one fragment. Empty fragments are ignored.
func (p *StreamPrinter) Write(fragment string) {
	if fragment == "" {
		return
	}
	lines := strings.SplitAfter(fragment, "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		if p.atLineHead {
			fmt.Fprint(p.w, p.prefix)
		}
		fmt.Fprint(p.w, line)
		p.atLineHead = strings.HasSuffix(line, "\n")
	}
	p.wrote = true
	p.lastNL = strings.HasSuffix(fragment, "\n")
}

// Finish ends the output with exactly one blank line.
func (p *StreamPrinter) Finish() {
	if p.wrote && !p.lastNL {
		fmt.Fprintln(p.w)
	}
	fmt.Fprintln(p.w)
}

// Wrote reports whether any text was printed.
func (p *StreamPrinter) Wrote() bool {
	return p.wrote
}
