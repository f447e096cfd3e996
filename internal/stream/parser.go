// Package stream parses the newline-delimited JSON body returned by a
// streaming inference server into ordered events.
//
// Chunks read from the transport do not line up with lines or JSON
// objects. The parser keeps the bytes of an unfinished line until its
// newline arrives, so a line is never parsed while truncated.
package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

const chunkSize = 4096

// EventKind tags an Event.
type EventKind int

const (
	// TextFragment carries an incremental piece of generated text.
	TextFragment EventKind = iota
	// Done signals that the upstream will send no further fragments.
	Done
	// Malformed carries a line that could not be parsed as a JSON object.
	Malformed
)

func (k EventKind) String() string {
	switch k {
	case TextFragment:
		return "text"
	case Done:
		return "done"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Event is one parsed line, or one half of a line that carried both text
// and the completion flag.
type Event struct {
	Kind EventKind
	Text string // TextFragment only
	Raw  string // Malformed only
	Line int    // 1-based index among non-blank lines
}

// line is the subset of an upstream JSON line the parser cares about.
// Unknown keys (model, created_at, context, ...) are ignored.
type line struct {
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

// Parser yields Events from an io.Reader. It is not safe for concurrent
// use and cannot be restarted.
type Parser struct {
	r       io.Reader
	chunk   []byte
	carry   []byte
	pending []Event
	cur     Event
	lines   int
	err     error
	ended   bool
}

// NewParser returns a Parser reading from r.
func NewParser(r io.Reader) *Parser {
	return &Parser{r: r, chunk: make([]byte, chunkSize)}
}

// Next advances to the next event. It returns false once the reader is
// exhausted or has failed; Err distinguishes the two.
func (p *Parser) Next() bool {
	for len(p.pending) == 0 {
		if p.ended {
			return false
		}
		p.fill()
	}
	p.cur = p.pending[0]
	p.pending = p.pending[1:]
	return true
}

// Event returns the event produced by the last successful call to Next.
func (p *Parser) Event() Event {
	return p.cur
}

// Err returns the transport error that ended the stream, or nil if the
// reader reached EOF.
func (p *Parser) Err() error {
	return p.err
}

// fill performs one read and queues the events of every line it completes.
func (p *Parser) fill() {
	n, err := p.r.Read(p.chunk)
	if n > 0 {
		p.carry = append(p.carry, p.chunk[:n]...)
		p.splitLines()
	}
	if err == nil {
		return
	}

	p.ended = true
	if errors.Is(err, io.EOF) {
		// Unterminated trailing bytes are a final line.
		if len(bytes.TrimSpace(p.carry)) > 0 {
			p.parseLine(p.carry)
		}
	} else {
		// The tail was cut off by the failure; parsing it would read a truncated line.
		p.err = err
	}
	p.carry = nil
}

func (p *Parser) splitLines() {
	start := 0
	for {
		i := bytes.IndexByte(p.carry[start:], '\n')
		if i < 0 {
			break
		}
		p.parseLine(p.carry[start : start+i])
		start += i + 1
	}
	if start > 0 {
		rest := copy(p.carry, p.carry[start:])
		p.carry = p.carry[:rest]
	}
}

func (p *Parser) parseLine(raw []byte) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return
	}
	p.lines++

	var l line
	if err := json.Unmarshal(trimmed, &l); err != nil {
		p.pending = append(p.pending, Event{Kind: Malformed, Raw: string(trimmed), Line: p.lines})
		return
	}
	if l.Response != nil {
		p.pending = append(p.pending, Event{Kind: TextFragment, Text: *l.Response, Line: p.lines})
	}
	if l.Done {
		p.pending = append(p.pending, Event{Kind: Done, Line: p.lines})
	}
}
