package util

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// NewLineSplitter returns a [bufio.SplitFunc] that accepts "\n", "\r\n"
// and a bare "\r" as line terminators.  A line ending in "\r" is
// delivered immediately; a "\n" that follows it is consumed together
// with the next line, so the splitter is stateful and must not be
// shared between scanners.
func NewLineSplitter() bufio.SplitFunc {
	skipLF := false
	return func(data []byte, atEOF bool) (int, []byte, error) {
		skip := 0
		if skipLF && len(data) > 0 {
			skipLF = false
			if data[0] == '\n' {
				skip = 1
			}
		}
		rest := data[skip:]
		if i := bytes.IndexAny(rest, "\r\n"); i >= 0 {
			if rest[i] == '\r' {
				skipLF = true
			}
			return skip + i + 1, rest[:i], nil
		}
		// Final unterminated line.
		if atEOF && len(rest) > 0 {
			return len(data), rest, nil
		}
		return skip, nil, nil
	}
}

// LineScanner reads terminator-delimited lines using a pooled buffer.
type LineScanner struct {
	*bufio.Scanner
	buf *[]byte
}

// NewLineScanner wraps r.  Lines longer than maxLine bytes make Scan
// stop with [bufio.ErrTooLong].  Call Release once scanning is over.
func NewLineScanner(r io.Reader, maxLine int) *LineScanner {
	buf := GetBuf()
	b := (*buf)[:0]
	if maxLine < cap(b) {
		b = b[:0:maxLine]
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(b, maxLine)
	sc.Split(NewLineSplitter())
	return &LineScanner{Scanner: sc, buf: buf}
}

// Release returns the scanner's buffer to the pool.  The scanner must
// not be used afterwards.
func (s *LineScanner) Release() {
	PutBuf(s.buf)
	s.buf = nil
}

// SplitText breaks text into individual messages on any line
// terminator.  The empty string is a single empty message; a trailing
// terminator does not produce an extra empty message.
func SplitText(text string) []string {
	if text == "" {
		return []string{""}
	}
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, len(text)+1), len(text)+1)
	sc.Split(NewLineSplitter())

	var out []string
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out
}
