// Package highlight resolves the single visual treatment of each displayed
// line from three independent sources: bookmarks, the active search match,
// and configured term rules. Precedence is firm and auditable:
// bookmark > search match > term rule > none.
package highlight

import "strings"

// TermRule is one configured highlight pattern. Rules are ordered; the
// first rule whose pattern occurs in a line wins for that line.
type TermRule struct {
	Pattern       string
	CaseSensitive bool
	Background    string // color name or hex, empty means the default
	Foreground    string
	Bold          bool
}

// Matches performs the rule's substring test against one line of text.
func (r TermRule) Matches(lineText string) bool {
	if r.Pattern == "" {
		return false
	}
	if r.CaseSensitive {
		return strings.Contains(lineText, r.Pattern)
	}
	return strings.Contains(strings.ToLower(lineText), strings.ToLower(r.Pattern))
}

// Kind orders decision outcomes by precedence, highest last.
type Kind int

const (
	KindNone Kind = iota
	KindTermRule
	KindSearchMatch
	KindBookmark
)

func (k Kind) String() string {
	switch k {
	case KindBookmark:
		return "bookmark"
	case KindSearchMatch:
		return "search"
	case KindTermRule:
		return "rule"
	default:
		return "none"
	}
}

// Decision is the resolved styling outcome for one line. Rule is set only
// for KindTermRule.
type Decision struct {
	Kind Kind
	Rule *TermRule
}

// Resolver holds the three highlight inputs. Resolve is pure with respect
// to them; whenever any input changes the caller re-resolves affected lines
// rather than reusing old decisions.
type Resolver struct {
	rules      []TermRule
	bookmarked func(line int) bool
	activeLine int // 1-based line owning the current search match; 0 when none
}

// NewResolver builds a resolver over an ordered rule list and a bookmark
// membership predicate. A nil predicate means no bookmarks.
func NewResolver(rules []TermRule, bookmarked func(int) bool) *Resolver {
	return &Resolver{rules: rules, bookmarked: bookmarked}
}

// SetRules replaces the ordered rule list.
func (r *Resolver) SetRules(rules []TermRule) {
	r.rules = rules
}

// SetActiveMatchLine records the line owning the current search match.
// Zero clears it.
func (r *Resolver) SetActiveMatchLine(line int) {
	r.activeLine = line
}

// ActiveMatchLine returns the line owning the current search match, 0 when
// there is none.
func (r *Resolver) ActiveMatchLine() int {
	return r.activeLine
}

// Resolve decides the styling for one line. The checks run in precedence
// order and stop at the first hit.
func (r *Resolver) Resolve(lineNo int, lineText string) Decision {
	if r.bookmarked != nil && r.bookmarked(lineNo) {
		return Decision{Kind: KindBookmark}
	}
	if r.activeLine != 0 && lineNo == r.activeLine {
		return Decision{Kind: KindSearchMatch}
	}
	for i := range r.rules {
		if r.rules[i].Matches(lineText) {
			return Decision{Kind: KindTermRule, Rule: &r.rules[i]}
		}
	}
	return Decision{}
}
