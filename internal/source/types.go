// Package source reads message definition text files.
//
// A definition file starts with optional ';' comment lines, then a line
// holding the three character component identifier. Every following line
// that starts with the identifier opens a new message:
//
//	ABC0001E: Text of the first message
//	which may continue on further lines.
//
// Scan makes a first pass to build the Plan; Parser makes the second
// pass and yields normalized Records. Both emitters share the Parser.
package source

import (
	"errors"
	"fmt"
)

var (
	ErrOpen                = errors.New("cannot open source file")
	ErrMalformedIdentifier = errors.New("malformed component identifier line")
	ErrMalformedNumber     = errors.New("malformed message number")
	ErrInvalidMessageType  = errors.New("invalid message type")
	ErrMissingSeparator    = errors.New("missing separator after message type")
	ErrTooManyMessages     = errors.New("too many messages")
)

// MaxMessages is the largest message count the catalog header can hold.
const MaxMessages = 0xFFFF

// IndexWidthThreshold is the largest source size, in bytes, compiled with
// 16-bit index entries.
const IndexWidthThreshold = 40000

// MessageType is the single letter class of a message.
type MessageType byte

const (
	TypeError   MessageType = 'E'
	TypeWarning MessageType = 'W'
	TypeInfo    MessageType = 'I'
	TypeHelp    MessageType = 'H'
	TypeProgram MessageType = 'P'
	TypeGeneric MessageType = '?'
)

// ParseMessageType maps a source letter to its type.
func ParseMessageType(c byte) (MessageType, bool) {
	switch t := MessageType(c); t {
	case TypeError, TypeWarning, TypeInfo, TypeHelp, TypeProgram, TypeGeneric:
		return t, true
	}
	return 0, false
}

func (t MessageType) String() string {
	switch t {
	case TypeError:
		return "error"
	case TypeWarning:
		return "warning"
	case TypeInfo:
		return "info"
	case TypeHelp:
		return "help"
	case TypeProgram:
		return "program"
	case TypeGeneric:
		return "generic"
	}
	return fmt.Sprintf("MessageType(%q)", byte(t))
}

// Plan is the result of the first pass. It is immutable and shared by
// both emitters.
type Plan struct {
	Identifier string
	First      int
	Count      int
	IndexWidth int   // 2 or 4 bytes per index entry
	InputSize  int64 // raw size of the source file
	BodyStart  int64 // offset of the first line after the identifier line
	BodyLine   int   // number of lines up to and including the identifier line
}

// IndexSize returns the size of the catalog index in bytes.
func (p Plan) IndexSize() int {
	return p.Count * p.IndexWidth
}

// IndexWidthFor returns the index entry width used for a source file of
// the given raw size.
func IndexWidthFor(size int64) int {
	if size <= IndexWidthThreshold {
		return 2
	}
	return 4
}

// Record is one normalized message.
type Record struct {
	Number int
	Type   MessageType
	Body   []byte // every line ends in CR LF, or four NULs after a "%0" line
	Line   int    // source line that opened the message
}

// LineError reports a malformed source line.
type LineError struct {
	Line int
	Err  error
	Text string
}

func (e *LineError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
