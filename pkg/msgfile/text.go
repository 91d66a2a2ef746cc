package msgfile

import (
	"bytes"
	"strings"
)

// HasTrailingNewline reports whether the message ends in CR LF. Messages
// written from a "%0" line end in NUL padding instead.
func (m Message) HasTrailingNewline() bool {
	return bytes.HasSuffix(m.Text, []byte("\r\n"))
}

// String returns the message text up to the first NUL byte.
func (m Message) String() string {
	t := m.Text
	if i := bytes.IndexByte(t, 0); i >= 0 {
		t = t[:i]
	}
	return string(t)
}

// Substitute replaces the insertion markers %1 to %9 with args. Markers
// without a matching argument are left as they are, "%%" yields "%".
func Substitute(text string, args ...string) string {
	if !strings.Contains(text, "%") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '%' || i+1 >= len(text) {
			b.WriteByte(c)
			continue
		}
		next := text[i+1]
		switch {
		case next == '%':
			b.WriteByte('%')
			i++
		case next >= '1' && next <= '9' && int(next-'1') < len(args):
			b.WriteString(args[next-'1'])
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
