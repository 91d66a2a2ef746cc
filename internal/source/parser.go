package source

import (
	"bytes"
	"io"
)

var (
	crlf      = []byte("\r\n")
	nulMarker = []byte("%0")
)

// Parser makes the second pass over a definition file and yields one
// Record per message. It is shared by the catalog and assembler emitters
// so both see identical bodies.
type Parser struct {
	lr      *lineReader
	ident   []byte
	number  int
	cur     *Record
	skipped int
	err     error
}

// NewParser returns a parser reading r, which must be positioned at
// plan.BodyStart.
func NewParser(r io.Reader, plan Plan) *Parser {
	lr := newLineReader(r)
	lr.off = plan.BodyStart
	lr.line = plan.BodyLine
	return &Parser{
		lr:     lr,
		ident:  []byte(plan.Identifier),
		number: plan.First,
	}
}

// Skipped returns the number of continuation lines that appeared before
// the first message and were dropped.
func (p *Parser) Skipped() int {
	return p.skipped
}

// Next returns the next complete message. It returns io.EOF after the
// last one.
func (p *Parser) Next() (Record, error) {
	if p.err != nil {
		return Record{}, p.err
	}
	for {
		line, err := p.lr.next()
		if err == io.EOF {
			return p.flush()
		}
		if err != nil {
			p.err = err
			return Record{}, err
		}

		switch {
		case isComment(line):
		case bytes.HasPrefix(line, p.ident):
			rec, err := p.open(line)
			if err != nil {
				p.err = err
				return Record{}, err
			}
			prev := p.cur
			p.cur = &rec
			if prev != nil {
				return *prev, nil
			}
		case p.cur == nil:
			p.skipped++
		case p.cur.Type == TypeGeneric:
		default:
			p.cur.Body = append(p.cur.Body, NormalizeSegment(line)...)
		}
	}
}

func (p *Parser) flush() (Record, error) {
	if p.cur == nil {
		p.err = io.EOF
		return Record{}, io.EOF
	}
	rec := *p.cur
	p.cur = nil
	return rec, nil
}

// open parses a line that starts a new message. The type letter sits in
// column 8 and the ':' separator in column 9; text normally starts after
// one blank in column 10. When column 10 is not blank the text starts
// there instead.
func (p *Parser) open(line []byte) (Record, error) {
	lineNo := p.lr.line
	content := trimEOL(line)
	if len(content) < 8 {
		return Record{}, &LineError{Line: lineNo, Err: ErrInvalidMessageType, Text: string(content)}
	}
	typ, ok := ParseMessageType(content[7])
	if !ok {
		return Record{}, &LineError{Line: lineNo, Err: ErrInvalidMessageType, Text: string(content)}
	}
	// The rest of a '?' line is ignored, separator included.
	if typ == TypeGeneric {
		rec := Record{Number: p.number, Type: typ, Line: lineNo, Body: append([]byte(nil), crlf...)}
		p.number++
		return rec, nil
	}
	if len(content) < 9 || content[8] != ':' {
		return Record{}, &LineError{Line: lineNo, Err: ErrMissingSeparator, Text: string(content)}
	}

	rec := Record{Number: p.number, Type: typ, Line: lineNo}
	p.number++
	text := content[9:]
	if len(text) > 0 && text[0] == ' ' {
		text = text[1:]
	}
	rec.Body = NormalizeSegment(text)
	return rec, nil
}

// NormalizeSegment returns a copy of one source line segment with its
// line terminator replaced by CR LF. A segment ending in "%0" has its
// last four bytes ("%0\r\n") replaced by NULs, which suppresses the
// trailing newline when the message is displayed.
func NormalizeSegment(seg []byte) []byte {
	text := trimEOL(seg)
	out := make([]byte, 0, len(text)+len(crlf))
	out = append(out, text...)
	out = append(out, crlf...)
	if bytes.HasSuffix(text, nulMarker) {
		clear(out[len(out)-4:])
	}
	return out
}

// ParseBytes scans and parses an in-memory definition file.
func ParseBytes(data []byte) (Plan, []Record, error) {
	plan, err := ScanReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Plan{}, nil, err
	}
	p := NewParser(bytes.NewReader(data[plan.BodyStart:]), plan)
	recs := make([]Record, 0, plan.Count)
	for {
		rec, err := p.Next()
		if err == io.EOF {
			return plan, recs, nil
		}
		if err != nil {
			return Plan{}, nil, err
		}
		recs = append(recs, rec)
	}
}
