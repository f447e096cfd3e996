package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestStreamPrinter_BasicFragments(t *testing.T) {
	var buf bytes.Buffer
	p := NewStreamPrinter(&buf, "  ")
	p.Write("hello")
	p.Write(" world")
	p.Finish()

	if buf.String() != "  hello world\n\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestStreamPrinter_PrefixesEveryLine(t *testing.T) {
	var buf bytes.Buffer
	p := NewStreamPrinter(&buf, "> ")
	p.Write("line one\nline")
	p.Write(" two\n")
	p.Write("line three")
	p.Finish()

	want := "> line one\n> line two\n> line three\n\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestStreamPrinter_EmptyPrefix(t *testing.T) {
	var buf bytes.Buffer
	p := NewStreamPrinter(&buf, "")
	p.Write("test")
	p.Finish()

	if strings.HasPrefix(buf.String(), " ") {
		t.Error("empty prefix should not add leading space")
	}
}

func TestStreamPrinter_SkipsEmptyFragments(t *testing.T) {
	var buf bytes.Buffer
	p := NewStreamPrinter(&buf, "  ")
	p.Write("")
	if p.Wrote() {
		t.Error("empty fragment should not count as output")
	}
	p.Write("x")
	if !p.Wrote() {
		t.Error("expected Wrote after a fragment")
	}
}

func TestStreamPrinter_PreservesExistingNewline(t *testing.T) {
	var buf bytes.Buffer
	p := NewStreamPrinter(&buf, "")
	p.Write("ends with newline\n")
	p.Finish()

	if strings.HasSuffix(buf.String(), "\n\n\n") {
		t.Errorf("should not triple-newline, got %q", buf.String())
	}
	if !strings.HasSuffix(buf.String(), "\n\n") {
		t.Errorf("expected a blank line at the end, got %q", buf.String())
	}
}

func TestStreamPrinter_NothingWritten(t *testing.T) {
	var buf bytes.Buffer
	p := NewStreamPrinter(&buf, ">> ")
	p.Finish()

	if buf.String() != "\n" {
		t.Errorf("expected a single newline, got %q", buf.String())
	}
}
