package stream

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkReader returns one chunk per Read call, then err (io.EOF if nil).
type chunkReader struct {
	chunks []string
	err    error
	reads  int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if c.reads < len(c.chunks) {
		n := copy(p, c.chunks[c.reads])
		c.reads++
		return n, nil
	}
	if c.err != nil {
		return 0, c.err
	}
	return 0, io.EOF
}

func collect(t *testing.T, p *Parser) []Event {
	t.Helper()
	var events []Event
	for p.Next() {
		events = append(events, p.Event())
	}
	return events
}

func TestParser_TextFragmentsInOrder(t *testing.T) {
	r := &chunkReader{chunks: []string{
		`{"response":"hello"}` + "\n",
		`{"response":" "}` + "\n" + `{"response":"world"}` + "\n",
	}}
	p := NewParser(r)

	events := collect(t, p)
	if p.Err() != nil {
		t.Fatalf("unexpected error: %v", p.Err())
	}
	want := []string{"hello", " ", "world"}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, ev := range events {
		if ev.Kind != TextFragment || ev.Text != want[i] {
			t.Errorf("event %d: expected text %q, got %v %q", i, want[i], ev.Kind, ev.Text)
		}
	}
}

func TestParser_ReassemblesLineAcrossChunks(t *testing.T) {
	r := &chunkReader{chunks: []string{
		`{"respon`,
		`se":"split`,
		` line"}` + "\n",
	}}
	events := collect(t, NewParser(r))

	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d: %+v", len(events), events)
	}
	if events[0].Kind != TextFragment || events[0].Text != "split line" {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestParser_TextAndDoneOnSameLine(t *testing.T) {
	r := &chunkReader{chunks: []string{`{"response":"end","done":true}` + "\n"}}
	events := collect(t, NewParser(r))

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != TextFragment || events[0].Text != "end" {
		t.Errorf("expected text fragment first, got %+v", events[0])
	}
	if events[1].Kind != Done {
		t.Errorf("expected done second, got %+v", events[1])
	}
	if events[0].Line != events[1].Line {
		t.Errorf("both events should come from the same line: %d vs %d", events[0].Line, events[1].Line)
	}
}

func TestParser_MalformedLineDoesNotAbort(t *testing.T) {
	r := &chunkReader{chunks: []string{
		`{"response":"a"}` + "\n" + `{"respons` + "\n" + `{"response":"b"}` + "\n",
	}}
	p := NewParser(r)
	events := collect(t, p)

	if p.Err() != nil {
		t.Fatalf("malformed line must not surface as an error: %v", p.Err())
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[1].Kind != Malformed || events[1].Raw != `{"respons` {
		t.Errorf("expected malformed event for line 2, got %+v", events[1])
	}
	if events[1].Line != 2 {
		t.Errorf("expected line 2, got %d", events[1].Line)
	}
	if events[2].Text != "b" {
		t.Errorf("expected parsing to continue after malformed line, got %+v", events[2])
	}
}

func TestParser_NonObjectJSONIsMalformed(t *testing.T) {
	r := &chunkReader{chunks: []string{"42\n" + `"text"` + "\n"}}
	events := collect(t, NewParser(r))

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	for _, ev := range events {
		if ev.Kind != Malformed {
			t.Errorf("expected malformed, got %+v", ev)
		}
	}
}

func TestParser_SkipsBlankLinesAndCRLF(t *testing.T) {
	r := &chunkReader{chunks: []string{"\n   \n" + `{"response":"x"}` + "\r\n\r\n"}}
	events := collect(t, NewParser(r))

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Line != 1 {
		t.Errorf("blank lines should not be counted, got line %d", events[0].Line)
	}
}

func TestParser_IgnoresLinesWithoutKnownFields(t *testing.T) {
	r := &chunkReader{chunks: []string{`{"model":"codellama","created_at":"now"}` + "\n" + `{"done":false}` + "\n"}}
	events := collect(t, NewParser(r))

	if len(events) != 0 {
		t.Errorf("expected no events, got %+v", events)
	}
}

func TestParser_TrailingLineWithoutNewline(t *testing.T) {
	r := &chunkReader{chunks: []string{`{"response":"a"}` + "\n" + `{"done":true}`}}
	events := collect(t, NewParser(r))

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Kind != Done {
		t.Errorf("expected trailing line to be parsed as done, got %+v", events[1])
	}
}

func TestParser_TrailingGarbageIsMalformed(t *testing.T) {
	r := &chunkReader{chunks: []string{`{"response":"a"}` + "\n" + `{"resp`}}
	p := NewParser(r)
	events := collect(t, p)

	if p.Err() != nil {
		t.Fatalf("unexpected error: %v", p.Err())
	}
	if len(events) != 2 || events[1].Kind != Malformed {
		t.Fatalf("expected trailing malformed event, got %+v", events)
	}
}

func TestParser_TransportError(t *testing.T) {
	boom := errors.New("connection reset")
	r := &chunkReader{
		chunks: []string{`{"response":"partial"}` + "\n" + `{"response":"cut`},
		err:    boom,
	}
	p := NewParser(r)
	events := collect(t, p)

	if !errors.Is(p.Err(), boom) {
		t.Fatalf("expected transport error, got %v", p.Err())
	}
	if len(events) != 1 {
		t.Fatalf("truncated tail must not be parsed, got %+v", events)
	}
	if events[0].Text != "partial" {
		t.Errorf("unexpected event: %+v", events[0])
	}
}

func TestParser_LongLineSpanningManyChunks(t *testing.T) {
	text := strings.Repeat("x", chunkSize*3)
	body := `{"response":"` + text + `"}` + "\n"
	events := collect(t, NewParser(strings.NewReader(body)))

	if len(events) != 1 || events[0].Text != text {
		t.Fatalf("expected one fragment of %d bytes, got %d events", len(text), len(events))
	}
}

func TestParser_MultibyteSplitAcrossChunks(t *testing.T) {
	full := `{"response":"héllo ✓"}` + "\n"
	// Split inside the 3-byte check mark.
	cut := strings.Index(full, "✓") + 1
	r := &chunkReader{chunks: []string{full[:cut], full[cut:]}}
	events := collect(t, NewParser(r))

	if len(events) != 1 || events[0].Text != "héllo ✓" {
		t.Fatalf("expected reassembled multibyte text, got %+v", events)
	}
}

func TestParser_EmptyStream(t *testing.T) {
	p := NewParser(strings.NewReader(""))
	if p.Next() {
		t.Fatalf("expected no events, got %+v", p.Event())
	}
	if p.Err() != nil {
		t.Errorf("unexpected error: %v", p.Err())
	}
}

func TestEventKind_String(t *testing.T) {
	if TextFragment.String() != "text" || Done.String() != "done" || Malformed.String() != "malformed" {
		t.Error("unexpected kind names")
	}
}
