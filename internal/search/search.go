// Package search maintains a literal substring match index over the loaded
// text with cyclic next/previous navigation. The index is rebuilt from
// scratch whenever the query, the case flag, or the underlying buffer
// changes; it never mutates incrementally.
package search

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrEmptyQuery rejects a build with no search term.
	ErrEmptyQuery = errors.New("search term is empty")
	// ErrNoMatches reports navigation over an empty match set.
	ErrNoMatches = errors.New("no matches")
)

// Index holds the match offsets for one (text, term, case flag) triple.
type Index struct {
	term          string
	caseSensitive bool
	matches       []int
	current       int // index into matches; -1 when navigation has not started
}

// New returns an empty, cleared index.
func New() *Index {
	return &Index{current: -1}
}

// Build computes all non-overlapping occurrences of term in text, replacing
// any previous state. Offsets are byte positions into text, ascending.
func (ix *Index) Build(text, term string, caseSensitive bool) error {
	ix.Clear()
	if term == "" {
		return ErrEmptyQuery
	}
	ix.term = term
	ix.caseSensitive = caseSensitive
	if caseSensitive {
		ix.matches = findLiteral(text, term)
	} else {
		ix.matches = findFolded(text, term)
	}
	return nil
}

// Clear drops all matches and resets navigation. Callers must clear (or
// rebuild) whenever the buffer contents change.
func (ix *Index) Clear() {
	ix.term = ""
	ix.caseSensitive = false
	ix.matches = nil
	ix.current = -1
}

// Matches returns the match start offsets, ascending.
func (ix *Index) Matches() []int {
	return ix.matches
}

// Term returns the query the index was built for.
func (ix *Index) Term() string {
	return ix.term
}

// Current returns the offset of the active match, if navigation has started.
func (ix *Index) Current() (int, bool) {
	if ix.current < 0 {
		return 0, false
	}
	return ix.matches[ix.current], true
}

// CurrentPosition returns the 1-based active match position and the total
// match count, for status display.
func (ix *Index) CurrentPosition() (pos, total int) {
	return ix.current + 1, len(ix.matches)
}

// Next advances to the next match, wrapping from the last to the first.
func (ix *Index) Next() (int, error) {
	if len(ix.matches) == 0 {
		return 0, ErrNoMatches
	}
	ix.current = (ix.current + 1) % len(ix.matches)
	return ix.matches[ix.current], nil
}

// Previous steps back to the previous match, wrapping from the first to the
// last.
func (ix *Index) Previous() (int, error) {
	if len(ix.matches) == 0 {
		return 0, ErrNoMatches
	}
	if ix.current < 0 {
		ix.current = len(ix.matches) - 1
	} else {
		ix.current = (ix.current - 1 + len(ix.matches)) % len(ix.matches)
	}
	return ix.matches[ix.current], nil
}

// findLiteral collects non-overlapping case-exact occurrences: each scan
// resumes after the end of the previous match.
func findLiteral(text, term string) []int {
	var offs []int
	from := 0
	for {
		i := strings.Index(text[from:], term)
		if i < 0 {
			return offs
		}
		offs = append(offs, from+i)
		from += i + len(term)
	}
}

// findFolded is the case-insensitive variant. When lowercasing preserves
// byte lengths the haystack and needle are lowered once and scanned with
// the literal matcher; otherwise a per-rune folding scan keeps the reported
// offsets valid in the original text.
func findFolded(text, term string) []int {
	lowerText := strings.ToLower(text)
	lowerTerm := strings.ToLower(term)
	if len(lowerText) == len(text) && len(lowerTerm) == len(term) {
		return findLiteral(lowerText, lowerTerm)
	}

	var offs []int
	for i := 0; i < len(text); {
		if n, ok := foldedPrefixLen(text[i:], lowerTerm); ok {
			offs = append(offs, i)
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		if size <= 0 {
			size = 1
		}
		i += size
	}
	return offs
}

// foldedPrefixLen reports whether haystack begins with needleLower under
// simple case folding, and how many haystack bytes the match spans.
func foldedPrefixLen(haystack, needleLower string) (int, bool) {
	h := 0
	for _, nr := range needleLower {
		if h >= len(haystack) {
			return 0, false
		}
		hr, size := utf8.DecodeRuneInString(haystack[h:])
		if size <= 0 {
			return 0, false
		}
		if unicode.ToLower(hr) != nr {
			return 0, false
		}
		h += size
	}
	return h, true
}
