package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Scan makes the first pass over the source file at path. The index
// width is chosen from the file size reported by the filesystem.
func Scan(path string) (Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	return ScanReader(f, st.Size())
}

// ScanReader makes the first pass over r, whose raw size is size.
func ScanReader(r io.Reader, size int64) (Plan, error) {
	lr := newLineReader(r)
	plan := Plan{
		InputSize:  size,
		IndexWidth: IndexWidthFor(size),
	}

	for {
		line, err := lr.next()
		if err == io.EOF {
			return Plan{}, &LineError{Line: lr.line, Err: ErrMalformedIdentifier, Text: "no identifier line"}
		}
		if err != nil {
			return Plan{}, err
		}
		if isComment(line) {
			continue
		}
		content := trimEOL(line)
		if len(content) != 3 || len(content) == len(line) {
			return Plan{}, &LineError{Line: lr.line, Err: ErrMalformedIdentifier, Text: string(content)}
		}
		plan.Identifier = string(content)
		plan.BodyStart = lr.off
		plan.BodyLine = lr.line
		break
	}

	ident := []byte(plan.Identifier)
	for {
		line, err := lr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Plan{}, err
		}
		if isComment(line) || !bytes.HasPrefix(line, ident) {
			continue
		}
		if plan.Count == 0 {
			n, err := messageNumber(line)
			if err != nil {
				return Plan{}, &LineError{Line: lr.line, Err: err, Text: string(trimEOL(line))}
			}
			plan.First = n
		}
		plan.Count++
		if plan.Count > MaxMessages {
			return Plan{}, fmt.Errorf("%w: more than %d", ErrTooManyMessages, MaxMessages)
		}
	}

	if plan.Count > 0 && plan.First+plan.Count-1 > MaxMessages {
		return Plan{}, fmt.Errorf("%w: numbers %d to %d exceed %d", ErrTooManyMessages, plan.First, plan.First+plan.Count-1, MaxMessages)
	}
	return plan, nil
}

// messageNumber reads the four digit number following the identifier.
func messageNumber(line []byte) (int, error) {
	if len(line) < 7 {
		return 0, ErrMalformedNumber
	}
	digits := line[3:7]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, ErrMalformedNumber
		}
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, ErrMalformedNumber
	}
	return n, nil
}

// lineReader yields raw lines including their terminators and tracks the
// byte offset and line number of what it has consumed.
type lineReader struct {
	r    *bufio.Reader
	off  int64
	line int
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

func (lr *lineReader) next() ([]byte, error) {
	b, err := lr.r.ReadBytes('\n')
	if len(b) > 0 {
		lr.off += int64(len(b))
		lr.line++
		return b, nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

func isComment(line []byte) bool {
	return len(line) > 0 && line[0] == ';'
}

// trimEOL strips one trailing "\r\n", "\n" or "\r".
func trimEOL(line []byte) []byte {
	switch {
	case bytes.HasSuffix(line, []byte("\r\n")):
		return line[:len(line)-2]
	case bytes.HasSuffix(line, []byte("\n")), bytes.HasSuffix(line, []byte("\r")):
		return line[:len(line)-1]
	}
	return line
}
