// Package bookmark keeps the per-file set of bookmarked lines. A set is
// always sorted by line number and holds at most one mark per line; it is
// hydrated from persisted configuration when a file is opened and flushed
// back on save.
package bookmark

import (
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// PreviewWidth bounds the stored preview text, in display cells.
const PreviewWidth = 50

// Mark is one bookmarked line.
type Mark struct {
	Line      int
	Preview   string
	CreatedAt time.Time
}

// Set is the in-memory working set for one file.
type Set struct {
	marks []Mark
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{}
}

// FromMarks builds a set from persisted marks, sorting and de-duplicating
// by line number (first occurrence wins).
func FromMarks(marks []Mark) *Set {
	s := NewSet()
	seen := make(map[int]bool, len(marks))
	for _, m := range marks {
		if m.Line < 1 || seen[m.Line] {
			continue
		}
		seen[m.Line] = true
		s.marks = append(s.marks, m)
	}
	sort.Slice(s.marks, func(i, j int) bool { return s.marks[i].Line < s.marks[j].Line })
	return s
}

// Toggle removes the mark on line when present, otherwise inserts one with
// the given preview and the current time. Reports whether a mark was added.
func (s *Set) Toggle(line int, preview string) bool {
	i := sort.Search(len(s.marks), func(i int) bool { return s.marks[i].Line >= line })
	if i < len(s.marks) && s.marks[i].Line == line {
		s.marks = append(s.marks[:i], s.marks[i+1:]...)
		return false
	}
	m := Mark{
		Line:      line,
		Preview:   truncatePreview(preview),
		CreatedAt: time.Now(),
	}
	s.marks = append(s.marks, Mark{})
	copy(s.marks[i+1:], s.marks[i:])
	s.marks[i] = m
	return true
}

// Has reports whether line is bookmarked.
func (s *Set) Has(line int) bool {
	i := sort.Search(len(s.marks), func(i int) bool { return s.marks[i].Line >= line })
	return i < len(s.marks) && s.marks[i].Line == line
}

// List returns the marks ordered by ascending line number.
func (s *Set) List() []Mark {
	out := make([]Mark, len(s.marks))
	copy(out, s.marks)
	return out
}

// Len returns the number of marks.
func (s *Set) Len() int {
	return len(s.marks)
}

// Clear removes every mark.
func (s *Set) Clear() {
	s.marks = nil
}

// NextAfter returns the first mark past line, wrapping to the first mark
// when none follows. False when the set is empty.
func (s *Set) NextAfter(line int) (Mark, bool) {
	if len(s.marks) == 0 {
		return Mark{}, false
	}
	i := sort.Search(len(s.marks), func(i int) bool { return s.marks[i].Line > line })
	if i == len(s.marks) {
		i = 0
	}
	return s.marks[i], true
}

// PreviousBefore returns the last mark before line, wrapping to the last
// mark when none precedes. False when the set is empty.
func (s *Set) PreviousBefore(line int) (Mark, bool) {
	if len(s.marks) == 0 {
		return Mark{}, false
	}
	i := sort.Search(len(s.marks), func(i int) bool { return s.marks[i].Line >= line })
	if i == 0 {
		return s.marks[len(s.marks)-1], true
	}
	return s.marks[i-1], true
}

func truncatePreview(s string) string {
	s = strings.TrimSpace(s)
	return runewidth.Truncate(s, PreviewWidth, "")
}
