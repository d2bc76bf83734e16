// Package ingest reads log files of arbitrary size into decoded text chunks.
//
// A load decodes the whole file against an ordered list of candidate text
// encodings; the first candidate that decodes cleanly is used for the entire
// file. When none match, a lossy byte-level fallback substitutes the Unicode
// replacement character so that loading never fails on content. The decoded
// text is then delivered as ordered chunks on a channel, off the interactive
// loop.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DefaultChunkSize is the target size of one decoded chunk.
const DefaultChunkSize = 256 * 1024

// ErrLoadInProgress rejects a load requested while another one is running on
// the same loader. The running load continues unaffected.
var ErrLoadInProgress = errors.New("a file load is already in progress")

// Event is one item in the ordered load stream: a sequence of Chunk values
// followed by exactly one Done or Failed.
type Event interface{ loadEvent() }

// Chunk is a bounded span of decoded text.
type Chunk struct {
	Seq      int    // 1-based position in the stream
	Total    int    // chunk count estimate from file size, for progress display
	Text     string // decoded text, split on rune boundaries
	Progress int    // 0..100, monotone, 100 only on the final chunk
}

// Done terminates a successful load.
type Done struct {
	Encoding string // name of the encoding that decoded the file
	Fallback bool   // true when byte-level lossy decoding was used
}

// Failed terminates a load that could not read the file.
type Failed struct {
	Err error
}

func (Chunk) loadEvent()  {}
func (Done) loadEvent()   {}
func (Failed) loadEvent() {}

// Loader reads files into chunk streams. One load at a time per loader.
type Loader struct {
	chunkSize int
	busy      atomic.Bool
}

// NewLoader returns a loader with the default chunk size.
func NewLoader() *Loader {
	return &Loader{chunkSize: DefaultChunkSize}
}

// NewLoaderSize returns a loader with a custom chunk size, for tests and
// tuning. Sizes below 1 fall back to the default.
func NewLoaderSize(chunkSize int) *Loader {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &Loader{chunkSize: chunkSize}
}

// Busy reports whether a load is currently running.
func (l *Loader) Busy() bool {
	return l.busy.Load()
}

// Load starts reading the file at path in the background and returns the
// event channel. The channel delivers chunks in file order, then one terminal
// event, and is then closed. Returns ErrLoadInProgress when a load is already
// running. Cancelling ctx stops delivery; it is the only way to abandon a
// stream early, and the caller must then stop receiving.
func (l *Loader) Load(ctx context.Context, path string) (<-chan Event, error) {
	if !l.busy.CompareAndSwap(false, true) {
		return nil, ErrLoadInProgress
	}

	events := make(chan Event, 1)
	go func() {
		defer l.busy.Store(false)
		defer close(events)
		l.run(ctx, path, events)
	}()
	return events, nil
}

func (l *Loader) run(ctx context.Context, path string, events chan<- Event) {
	send := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		send(Failed{Err: fmt.Errorf("read %s: %w", path, err)})
		return
	}

	text, encName, fallback := decode(data)

	total := (len(data) + l.chunkSize - 1) / l.chunkSize
	if total < 1 {
		total = 1
	}

	seq := 0
	for start := 0; start < len(text); {
		end := start + l.chunkSize
		if end >= len(text) {
			end = len(text)
		} else {
			// Never split a rune across a chunk seam.
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == start {
				end = start + l.chunkSize
			}
		}

		seq++
		p := int(math.Round(float64(end) / float64(len(text)) * 100))
		if end < len(text) && p > 99 {
			p = 99
		}
		if !send(Chunk{Seq: seq, Total: total, Text: text[start:end], Progress: p}) {
			return
		}
		start = end
	}

	send(Done{Encoding: encName, Fallback: fallback})
}

// decode tries each candidate encoding against the whole file and falls back
// to lossy byte decoding when none accept it. The fallback never fails.
func decode(data []byte) (text string, encName string, fallback bool) {
	for _, c := range candidates {
		if s, ok := c.decode(data); ok {
			return s, c.name, false
		}
	}
	return strings.ToValidUTF8(string(data), "�"), "bytes", true
}

var candidates = []struct {
	name   string
	decode func([]byte) (string, bool)
}{
	{"utf-8", decodeUTF8},
	{"utf-16", decodeUTF16},
	{"windows-1252", decodeWindows1252},
	{"iso-8859-1", decodeLatin1},
}

func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// decodeUTF16 requires a byte-order mark; guessing endianness on BOM-less
// input produces mojibake more often than text.
func decodeUTF16(data []byte) (string, bool) {
	if len(data) < 2 {
		return "", false
	}
	hasBOM := (data[0] == 0xff && data[1] == 0xfe) || (data[0] == 0xfe && data[1] == 0xff)
	if !hasBOM {
		return "", false
	}
	dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	out, err := dec.Bytes(data)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// windows1252Undefined are the code points the encoding leaves unmapped;
// their presence disqualifies the candidate.
var windows1252Undefined = []byte{0x81, 0x8d, 0x8f, 0x90, 0x9d}

func decodeWindows1252(data []byte) (string, bool) {
	for _, b := range windows1252Undefined {
		if bytes.IndexByte(data, b) >= 0 {
			return "", false
		}
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(out), true
}

func decodeLatin1(data []byte) (string, bool) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(out), true
}
