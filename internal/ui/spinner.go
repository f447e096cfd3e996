// Package ui provides terminal UI helpers.
package ui

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Spinner shows progress while waiting for the first byte from the model.
// It draws nothing when stderr is not a terminal, so piped output stays clean.
type Spinner struct {
	s   *spinner.Spinner
	out io.Writer
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(msg string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = "  " + msg
	s.Color("cyan")
	return &Spinner{s: s, out: os.Stderr}
}

func (sp *Spinner) interactive() bool {
	return !color.NoColor
}

// Start begins the spinner animation.
func (sp *Spinner) Start() {
	if sp.interactive() {
		sp.s.Start()
	}
}

// Stop halts the spinner and clears the line.
func (sp *Spinner) Stop() {
	sp.s.Stop()
}

// Fail stops the spinner and prints a red cross.
func (sp *Spinner) Fail(msg string) {
	sp.s.Stop()
	red := color.New(color.FgRed)
	red.Fprintf(sp.out, "  ✗ %s\n", msg)
}
