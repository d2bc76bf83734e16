// Package ansi decodes SGR escape sequences embedded in log text into
// styled runs. It is not a terminal emulator: cursor movement, screen
// control, and any non-SGR sequences are stripped, never interpreted.
package ansi

import (
	"strings"
	"unicode/utf8"
)

// Color is a foreground color from the 16-color SGR palette.
// The zero value means "terminal default".
type Color int

const (
	Default Color = iota
	Black
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
	BrightBlack
	BrightRed
	BrightGreen
	BrightYellow
	BrightBlue
	BrightMagenta
	BrightCyan
	BrightWhite
)

var colorNames = [...]string{
	"default", "black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"brightblack", "brightred", "brightgreen", "brightyellow", "brightblue",
	"brightmagenta", "brightcyan", "brightwhite",
}

func (c Color) String() string {
	if c < Default || int(c) >= len(colorNames) {
		return "default"
	}
	return colorNames[c]
}

// Style is the rendition applied to a run of text.
type Style struct {
	Foreground Color
	Bold       bool
}

// Run is a contiguous span of text sharing one style. Immutable once emitted.
type Run struct {
	Text  string
	Style Style
}

// State is the decoder state threaded between chunk decodes. The state
// returned by Decode for chunk n must be passed unmodified to the Decode
// call for chunk n+1. The zero value is the start-of-stream state.
type State struct {
	Style Style

	// carry holds the tail of the input when it ends inside a candidate
	// escape sequence (or a CR that may pair with a LF in the next chunk),
	// so sequences split across chunk seams still decode.
	carry string
}

const (
	escByte = 0x1b

	// A plausible SGR sequence is short. Anything held across a chunk seam
	// longer than this is flushed as literal text instead.
	maxCarry = 32
)

// Decode consumes one chunk of text and returns the styled runs it produces
// plus the outgoing state. Malformed sequences never fail: they are stripped
// or passed through as literal text.
func Decode(st State, chunk string) ([]Run, State) {
	input := st.carry + chunk
	st.carry = ""

	var runs []Run
	var b strings.Builder
	cur := st.Style

	flush := func() {
		if b.Len() > 0 {
			runs = append(runs, Run{Text: b.String(), Style: cur})
			b.Reset()
		}
	}

	i := 0
	for i < len(input) {
		c := input[i]

		if c == escByte {
			if i+1 >= len(input) {
				st.carry = input[i:]
				break
			}
			if input[i+1] != '[' {
				// Lone introducer with no CSI bracket: strip the ESC byte.
				i++
				continue
			}
			j := i + 2
			for j < len(input) && !isFinalByte(input[j]) {
				j++
			}
			if j >= len(input) {
				if len(input)-i <= maxCarry {
					st.carry = input[i:]
					break
				}
				// Too long to be a real SGR sequence: treat as literal.
				b.WriteString(input[i:])
				break
			}
			if input[j] == 'm' && validSGRParams(input[i+2:j]) {
				next := applySGR(cur, input[i+2:j])
				if next != cur {
					flush()
					cur = next
				}
			}
			// Any other final byte is a non-SGR control sequence: stripped.
			i = j + 1
			continue
		}

		if c == '\r' {
			if i+1 >= len(input) {
				st.carry = "\r"
				break
			}
			b.WriteByte('\n')
			i++
			if input[i] == '\n' {
				i++
			}
			continue
		}

		if c < utf8.RuneSelf {
			b.WriteByte(c)
			i++
			continue
		}

		if !utf8.FullRuneInString(input[i:]) {
			// A multi-byte rune cut at the chunk seam; hold the prefix.
			st.carry = input[i:]
			break
		}
		r, size := utf8.DecodeRuneInString(input[i:])
		i += size
		switch {
		case isLineSeparator(r):
			b.WriteByte('\n')
		case isInvisibleFormat(r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}

	flush()
	st.Style = cur
	return runs, st
}

// Flush returns any text held back at a chunk seam as a literal run. Call it
// after the final chunk; an input that ends mid-sequence renders as-is rather
// than vanishing.
func Flush(st State) ([]Run, State) {
	if st.carry == "" {
		return nil, st
	}
	text := st.carry
	st.carry = ""
	if text == "\r" {
		text = "\n"
	}
	return []Run{{Text: text, Style: st.Style}}, st
}

// Plain concatenates the text of runs, discarding styles.
func Plain(runs []Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// isFinalByte reports whether b terminates a CSI sequence.
func isFinalByte(b byte) bool {
	return b >= 0x40 && b <= 0x7e
}

func validSGRParams(params string) bool {
	for i := 0; i < len(params); i++ {
		c := params[i]
		if c != ';' && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// applySGR folds a semicolon-separated parameter list onto a style,
// left to right. Unknown codes are ignored.
func applySGR(st Style, params string) Style {
	if params == "" {
		return Style{}
	}
	for _, field := range strings.Split(params, ";") {
		code := 0
		for i := 0; i < len(field); i++ {
			code = code*10 + int(field[i]-'0')
		}
		switch {
		case code == 0:
			st = Style{}
		case code == 1:
			st.Bold = true
		case code >= 30 && code <= 37:
			st.Foreground = Black + Color(code-30)
		case code >= 90 && code <= 97:
			st.Foreground = BrightBlack + Color(code-90)
		}
	}
	return st
}

// isLineSeparator covers the non-ASCII newline conventions: NEL, LINE
// SEPARATOR, and PARAGRAPH SEPARATOR.
func isLineSeparator(r rune) bool {
	return r == '\u0085' || r == '\u2028' || r == '\u2029'
}

// isInvisibleFormat reports runes that carry no visible content in a log
// view: BOM, zero-width joiners, and bidi control marks.
func isInvisibleFormat(r rune) bool {
	switch r {
	case '\ufeff', '\u200c', '\u200d', '\u200e', '\u200f':
		return true
	}
	return (r >= '\u202a' && r <= '\u202e') || (r >= '\u2066' && r <= '\u2069')
}
