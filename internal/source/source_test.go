package source

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseBytesSingleMessage(t *testing.T) {
	t.Parallel()

	plan, recs, err := ParseBytes([]byte("ABC\nABC0001E: Hello world%0\r\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if plan.Identifier != "ABC" || plan.First != 1 || plan.Count != 1 || plan.IndexWidth != 2 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if len(recs) != 1 {
		t.Fatalf("records: got %d want 1", len(recs))
	}
	want := []byte("Hello world\x00\x00\x00\x00")
	if recs[0].Type != TypeError || !bytes.Equal(recs[0].Body, want) {
		t.Fatalf("record: got %c %q want E %q", recs[0].Type, recs[0].Body, want)
	}
	if recs[0].Line != 2 {
		t.Fatalf("line: got %d want 2", recs[0].Line)
	}
}

func TestParseBytesContinuationAndComments(t *testing.T) {
	t.Parallel()

	src := strings.Join([]string{
		"; header comment",
		"SYS",
		"stray line before any message",
		"SYS0100W: first line",
		"; comments do not end a message",
		"second line",
		"",
		"SYS0101?: ignored text",
		"also ignored",
		"SYS0102I:no blank after separator",
		"",
	}, "\n")

	plan, recs, err := ParseBytes([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if plan.First != 100 || plan.Count != 3 || plan.BodyLine != 2 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if len(recs) != plan.Count {
		t.Fatalf("records: got %d want %d", len(recs), plan.Count)
	}

	tests := []struct {
		number int
		typ    MessageType
		body   string
	}{
		{100, TypeWarning, "first line\r\nsecond line\r\n\r\n"},
		{101, TypeGeneric, "\r\n"},
		{102, TypeInfo, "no blank after separator\r\n"},
	}
	for i, tc := range tests {
		r := recs[i]
		if r.Number != tc.number || r.Type != tc.typ || string(r.Body) != tc.body {
			t.Errorf("record %d: got {%d %c %q} want {%d %c %q}", i, r.Number, r.Type, r.Body, tc.number, tc.typ, tc.body)
		}
	}
}

func TestParseBytesGenericLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{"no separator", "ABC0001?"},
		{"trailing text without separator", "ABC0001? anything here"},
		{"separator without blank", "ABC0001?:text"},
		{"separator and text", "ABC0001?: text"},
		{"odd bytes", "ABC0001?\t%0 ;: \x7f"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			src := "ABC\n" + tc.line + "\ncontinuation is ignored\nABC0002E: next\n"
			plan, recs, err := ParseBytes([]byte(src))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if plan.Count != 2 || len(recs) != 2 {
				t.Fatalf("count: plan %d records %d want 2", plan.Count, len(recs))
			}
			if recs[0].Type != TypeGeneric || string(recs[0].Body) != "\r\n" {
				t.Fatalf("generic record: got %c %q want ? %q", recs[0].Type, recs[0].Body, "\r\n")
			}
			if recs[1].Number != 2 || recs[1].Type != TypeError || string(recs[1].Body) != "next\r\n" {
				t.Fatalf("next record: got {%d %c %q}", recs[1].Number, recs[1].Type, recs[1].Body)
			}
		})
	}
}

func TestParserSkipped(t *testing.T) {
	t.Parallel()

	data := []byte("ABC\norphan one\norphan two\nABC0001I: ok\n")
	plan, err := ScanReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	p := NewParser(bytes.NewReader(data[plan.BodyStart:]), plan)
	if _, err := p.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if got := p.Skipped(); got != 2 {
		t.Fatalf("skipped: got %d want 2", got)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want error
		line int
	}{
		{"identifier too long", "ABCD\nABC0001E: x\n", ErrMalformedIdentifier, 1},
		{"identifier without newline", "ABC", ErrMalformedIdentifier, 1},
		{"empty file", "", ErrMalformedIdentifier, 0},
		{"bad number", "ABC\nABC00X1E: x\n", ErrMalformedNumber, 2},
		{"short number", "ABC\nABC01\n", ErrMalformedNumber, 2},
		{"bad type", "ABC\nABC0001X: x\n", ErrInvalidMessageType, 2},
		{"line too short for type", "ABC\nABC0001\n", ErrInvalidMessageType, 2},
		{"missing separator", "ABC\nABC0001E x\n", ErrMissingSeparator, 2},
		{"separator past end", "ABC\nABC0001E\n", ErrMissingSeparator, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := ParseBytes([]byte(tc.src))
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v want %v", err, tc.want)
			}
			var le *LineError
			if !errors.As(err, &le) {
				t.Fatalf("expected *LineError, got %T", err)
			}
			if le.Line != tc.line {
				t.Fatalf("line: got %d want %d", le.Line, tc.line)
			}
		})
	}
}

func TestScanTooManyMessages(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("ABC\n")
	b.WriteString("ABC9999I: last\n")
	b.WriteString("ABC9999I: one too many\n")
	data := []byte(b.String())

	// 9999 + 1 still fits in the header; only numbering past 0xFFFF fails.
	if _, err := ScanReader(bytes.NewReader(data), int64(len(data))); err != nil {
		t.Fatalf("scan: %v", err)
	}

	b.Reset()
	b.WriteString("ABC\n")
	for range MaxMessages + 1 {
		b.WriteString("ABC0000I:\n")
	}
	data = []byte(b.String())
	if _, err := ScanReader(bytes.NewReader(data), int64(len(data))); !errors.Is(err, ErrTooManyMessages) {
		t.Fatalf("expected ErrTooManyMessages, got %v", err)
	}
}

func TestIndexWidthBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size int64
		want int
	}{
		{0, 2},
		{39000, 2},
		{IndexWidthThreshold, 2},
		{IndexWidthThreshold + 1, 4},
		{41000, 4},
	}
	for _, tc := range tests {
		if got := IndexWidthFor(tc.size); got != tc.want {
			t.Errorf("IndexWidthFor(%d) = %d; want %d", tc.size, got, tc.want)
		}
	}
}

func TestScanFileSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, size := range []int{39000, 41000} {
		path := filepath.Join(dir, "big.txt")
		data := padSource(size)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		plan, err := Scan(path)
		if err != nil {
			t.Fatalf("scan %d: %v", size, err)
		}
		if plan.InputSize != int64(size) {
			t.Fatalf("input size: got %d want %d", plan.InputSize, size)
		}
		if want := IndexWidthFor(int64(size)); plan.IndexWidth != want {
			t.Fatalf("index width for %d: got %d want %d", size, plan.IndexWidth, want)
		}
	}
}

func TestScanMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Scan(filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
}

func TestNormalizeSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"text", "text\r\n"},
		{"text\n", "text\r\n"},
		{"text\r\n", "text\r\n"},
		{"text\r", "text\r\n"},
		{"", "\r\n"},
		{"prompt%0", "prompt\x00\x00\x00\x00"},
		{"prompt%0\r\n", "prompt\x00\x00\x00\x00"},
		{"%0 not at end\n", "%0 not at end\r\n"},
	}
	for _, tc := range tests {
		if got := NormalizeSegment([]byte(tc.in)); string(got) != tc.want {
			t.Errorf("NormalizeSegment(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeSegmentIdempotent(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"a", "a\n", "a\r\n", "a\r", "\n", "x y z\r\n"} {
		once := NormalizeSegment([]byte(in))
		twice := NormalizeSegment(once)
		if !bytes.Equal(once, twice) {
			t.Errorf("NormalizeSegment not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestRecordCountMatchesPlan(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	b.WriteString("; generated\nXYZ\n")
	for i := range 250 {
		switch i % 5 {
		case 0:
			b.WriteString("XYZ0042E: error text\n")
		case 1:
			b.WriteString("XYZ0042W: warning\ncontinued\n")
		case 2:
			b.WriteString("; interleaved comment\nXYZ0042?: \n")
		case 3:
			b.WriteString("XYZ0042H: help%0\n")
		default:
			b.WriteString("XYZ0042P: program\r\n\r\n")
		}
	}

	plan, recs, err := ParseBytes([]byte(b.String()))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if plan.Count != 250 || len(recs) != plan.Count {
		t.Fatalf("count: plan %d records %d want 250", plan.Count, len(recs))
	}
	for i, r := range recs {
		if r.Number != plan.First+i {
			t.Fatalf("record %d numbered %d want %d", i, r.Number, plan.First+i)
		}
	}
}

func padSource(size int) []byte {
	head := []byte("PAD\nPAD0001I: ")
	out := make([]byte, 0, size)
	out = append(out, head...)
	for len(out) < size-1 {
		out = append(out, 'x')
	}
	return append(out, '\n')
}
