// Package asmgen writes compiled messages as MASM data definitions, one
// labelled block per message, for linking messages directly into a
// program instead of shipping a catalog file.
package asmgen

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/samcharles93/mkmsgf/internal/logger"
	"github.com/samcharles93/mkmsgf/internal/source"
	"github.com/samcharles93/mkmsgf/internal/symtab"
)

// ChunkSize is the longest string literal written on one DB line.
const ChunkSize = 16

const eol = "\r\n"

// Stats counts what an Emitter has written.
type Stats struct {
	Records   int
	Labeled   int
	Unlabeled int
	Lines     int
}

// Emitter writes records as assembler source.
type Emitter struct {
	w     *bufio.Writer
	ident string
	syms  *symtab.Table
	log   logger.Logger
	stats Stats
	err   error
}

// NewEmitter returns an emitter writing to w. syms may be nil, in which
// case every record is written without labels.
func NewEmitter(w io.Writer, identifier string, syms *symtab.Table, log logger.Logger) *Emitter {
	if log == nil {
		log = logger.Discard()
	}
	return &Emitter{
		w:     bufio.NewWriter(w),
		ident: identifier,
		syms:  syms,
		log:   log,
	}
}

// Stats returns the running counters.
func (e *Emitter) Stats() Stats {
	return e.stats
}

// Emit writes one record. Records without a label still get their DB
// lines but no label directives.
func (e *Emitter) Emit(rec source.Record) error {
	labels := e.syms.Labels(rec.Number)
	e.stats.Records++
	if len(labels) == 0 {
		e.stats.Unlabeled++
		e.log.Warn("no label for message", "id", fmt.Sprintf("%s%04d", e.ident, rec.Number), "line", rec.Line)
	} else {
		e.stats.Labeled++
	}

	for _, l := range labels {
		e.line("\tPUBLIC TXT_" + l)
		e.line("TXT_" + l + "\tLABEL\tWORD")
	}
	if len(labels) > 0 {
		e.line(fmt.Sprintf("\tDW\tEND_%s - TXT_%s - 2", labels[0], labels[0]))
	}

	e.line(fmt.Sprintf("\tDB\t'%s%04d: '", e.ident, rec.Number))
	e.body(rec.Body)

	if len(labels) > 0 {
		e.line("END_" + labels[0] + "\tLABEL\tWORD")
		e.line("\tDB\t0")
	}
	return e.err
}

// body writes the message text, stopping at the first NUL.
func (e *Emitter) body(b []byte) {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	for len(b) > 0 {
		seg, rest, found := bytes.Cut(b, []byte(eol))
		b = rest
		if len(seg) == 0 {
			if found {
				e.line("\tDB\t0DH, 0AH")
			}
			continue
		}
		for len(seg) > 0 {
			n := min(len(seg), ChunkSize)
			chunk := seg[:n]
			seg = seg[n:]
			s := "\tDB\t'" + quote(chunk) + "'"
			if len(seg) == 0 && found {
				s += ", 0DH, 0AH"
			}
			e.line(s)
		}
	}
}

func (e *Emitter) line(s string) {
	if e.err != nil {
		return
	}
	e.stats.Lines++
	if _, e.err = e.w.WriteString(s); e.err == nil {
		_, e.err = e.w.WriteString(eol)
	}
}

// Flush writes any buffered output and reports the first write error.
func (e *Emitter) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

func quote(b []byte) string {
	return strings.ReplaceAll(string(b), "'", "''")
}
