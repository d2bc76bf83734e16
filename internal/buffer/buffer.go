// Package buffer accumulates decoded log text and assigns 1-based line
// numbers as content streams in. The buffer has a single writer (the chunk
// consumer) and its readers run on the same loop; it is not safe for
// concurrent use.
package buffer

import (
	"sort"
	"strings"

	"github.com/calder/loupe/internal/ansi"
)

// Line is one displayed line: its plain text (newline excluded) and the
// styled runs covering it.
type Line struct {
	Text string
	Runs []ansi.Run
}

type record struct {
	start int // byte offset of the line start in the plain text
	text  strings.Builder
	runs  []ansi.Run
}

// Buffer owns the loaded text of one file.
type Buffer struct {
	text  strings.Builder
	lines []*record
	open  bool // the last record is still accumulating
	done  bool // the load has finished
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Reset discards all content. Call before starting a new load.
func (b *Buffer) Reset() {
	b.text.Reset()
	b.lines = nil
	b.open = false
	b.done = false
}

// Append feeds decoded runs into the buffer, splitting them into lines.
// A new line record opens lazily on its first content, so a trailing
// newline does not manufacture an empty final line.
func (b *Buffer) Append(runs []ansi.Run) {
	for _, r := range runs {
		seg := r.Text
		for seg != "" {
			idx := strings.IndexByte(seg, '\n')
			if idx < 0 {
				b.write(seg, r.Style)
				break
			}
			b.write(seg[:idx], r.Style)
			if !b.open {
				// An empty line still gets a record so it keeps a number.
				b.lines = append(b.lines, &record{start: b.text.Len()})
			}
			b.text.WriteByte('\n')
			b.open = false
			seg = seg[idx+1:]
		}
	}
}

func (b *Buffer) write(seg string, style ansi.Style) {
	if seg == "" {
		return
	}
	if !b.open {
		b.lines = append(b.lines, &record{start: b.text.Len()})
		b.open = true
	}
	cur := b.lines[len(b.lines)-1]
	b.text.WriteString(seg)
	cur.text.WriteString(seg)
	cur.runs = append(cur.runs, ansi.Run{Text: seg, Style: style})
}

// Complete marks the end of the load, promoting a trailing unterminated line
// to a counted one.
func (b *Buffer) Complete() {
	b.done = true
}

// LineCount returns the number of lines whose terminator (or the end of the
// load) has been observed.
func (b *Buffer) LineCount() int {
	n := len(b.lines)
	if b.open && !b.done {
		n--
	}
	return n
}

// VisibleLineCount includes a trailing partial line that is displayed while
// a load is still in flight.
func (b *Buffer) VisibleLineCount() int {
	return len(b.lines)
}

// Line returns the 1-based line n.
func (b *Buffer) Line(n int) (Line, bool) {
	if n < 1 || n > len(b.lines) {
		return Line{}, false
	}
	rec := b.lines[n-1]
	return Line{Text: rec.text.String(), Runs: rec.runs}, true
}

// PlainText returns the full de-escaped text, newlines included.
func (b *Buffer) PlainText() string {
	return b.text.String()
}

// Len returns the plain text size in bytes.
func (b *Buffer) Len() int {
	return b.text.Len()
}

// LineForOffset maps a byte offset in the plain text to its owning 1-based
// line number. Offsets past the end map to the last line; an empty buffer
// returns 0.
func (b *Buffer) LineForOffset(off int) int {
	if len(b.lines) == 0 {
		return 0
	}
	i := sort.Search(len(b.lines), func(i int) bool {
		return b.lines[i].start > off
	})
	return i
}

// LineSpan returns the byte offsets [start, end) of line n in the plain
// text, excluding the newline.
func (b *Buffer) LineSpan(n int) (start, end int, ok bool) {
	if n < 1 || n > len(b.lines) {
		return 0, 0, false
	}
	rec := b.lines[n-1]
	return rec.start, rec.start + rec.text.Len(), true
}
