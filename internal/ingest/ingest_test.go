package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

// collect drains one load stream and returns its chunks and terminal event.
func collect(t *testing.T, l *Loader, path string) ([]Chunk, Event) {
	t.Helper()
	events, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	var chunks []Chunk
	var terminal Event
	for ev := range events {
		switch ev := ev.(type) {
		case Chunk:
			if terminal != nil {
				t.Fatal("chunk delivered after terminal event")
			}
			chunks = append(chunks, ev)
		default:
			terminal = ev
		}
	}
	if terminal == nil {
		t.Fatal("stream closed without terminal event")
	}
	return chunks, terminal
}

func TestLoadSmallFile(t *testing.T) {
	path := writeTemp(t, "a.log", []byte("hello\nworld\n"))

	chunks, terminal := collect(t, NewLoader(), path)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != "hello\nworld\n" || chunks[0].Seq != 1 || chunks[0].Progress != 100 {
		t.Errorf("chunk = %+v", chunks[0])
	}
	done, ok := terminal.(Done)
	if !ok {
		t.Fatalf("terminal = %#v, want Done", terminal)
	}
	if done.Encoding != "utf-8" || done.Fallback {
		t.Errorf("done = %+v, want utf-8 without fallback", done)
	}
}

func TestLoadChunking(t *testing.T) {
	// 600 KiB with 256 KiB chunks must yield exactly 3 chunks with
	// monotone progress ending at 100.
	const chunkSize = 256 * 1024
	data := []byte(strings.Repeat("x", 600*1024))
	path := writeTemp(t, "big.log", data)

	chunks, terminal := collect(t, NewLoaderSize(chunkSize), path)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	var rebuilt strings.Builder
	prev := -1
	for i, c := range chunks {
		if c.Seq != i+1 {
			t.Errorf("chunk %d has seq %d", i, c.Seq)
		}
		if c.Total != 3 {
			t.Errorf("chunk %d total = %d, want 3", i, c.Total)
		}
		if c.Progress < prev {
			t.Errorf("progress went backwards: %d after %d", c.Progress, prev)
		}
		if c.Progress == 100 && i != len(chunks)-1 {
			t.Errorf("chunk %d reports 100%% before the final chunk", i)
		}
		prev = c.Progress
		rebuilt.WriteString(c.Text)
	}
	if chunks[len(chunks)-1].Progress != 100 {
		t.Errorf("final progress = %d, want 100", chunks[len(chunks)-1].Progress)
	}
	if rebuilt.String() != string(data) {
		t.Error("concatenated chunks do not reproduce the file")
	}
	if _, ok := terminal.(Done); !ok {
		t.Fatalf("terminal = %#v, want Done", terminal)
	}
}

func TestLoadChunkSeamRespectsRunes(t *testing.T) {
	// Multi-byte runes near every seam; no chunk may end mid-rune.
	data := []byte(strings.Repeat("ré", 100))
	path := writeTemp(t, "runes.log", data)

	chunks, _ := collect(t, NewLoaderSize(7), path)
	var rebuilt strings.Builder
	for _, c := range chunks {
		if !strings.HasSuffix(c.Text, "r") && !strings.HasSuffix(c.Text, "é") {
			t.Fatalf("chunk ends mid-rune: %q", c.Text)
		}
		rebuilt.WriteString(c.Text)
	}
	if rebuilt.String() != string(data) {
		t.Error("concatenated chunks do not reproduce the file")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeTemp(t, "empty.log", nil)
	chunks, terminal := collect(t, NewLoader(), path)
	if len(chunks) != 0 {
		t.Errorf("got %d chunks for an empty file, want 0", len(chunks))
	}
	if _, ok := terminal.(Done); !ok {
		t.Fatalf("terminal = %#v, want Done", terminal)
	}
}

func TestLoadMissingFile(t *testing.T) {
	chunks, terminal := collect(t, NewLoader(), filepath.Join(t.TempDir(), "absent.log"))
	if len(chunks) != 0 {
		t.Errorf("got %d chunks, want 0", len(chunks))
	}
	failed, ok := terminal.(Failed)
	if !ok {
		t.Fatalf("terminal = %#v, want Failed", terminal)
	}
	if !errors.Is(failed.Err, os.ErrNotExist) {
		t.Errorf("err = %v, want wrapped ErrNotExist", failed.Err)
	}
}

func TestLoadInProgressRefused(t *testing.T) {
	path := writeTemp(t, "a.log", []byte(strings.Repeat("line\n", 1000)))

	l := NewLoaderSize(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := l.Load(ctx, path)
	if err != nil {
		t.Fatalf("first Load() error = %v", err)
	}
	// The first stream is not being drained, so the loader stays busy.
	if _, err := l.Load(ctx, path); !errors.Is(err, ErrLoadInProgress) {
		t.Fatalf("second Load() error = %v, want ErrLoadInProgress", err)
	}

	for range events {
	}
	waitIdle(t, l)

	events, err = l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() after completion error = %v", err)
	}
	for range events {
	}
}

func waitIdle(t *testing.T, l *Loader) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for l.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("loader never became idle")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDecodeEncodings(t *testing.T) {
	utf16LE := func(s string) []byte {
		out := []byte{0xff, 0xfe}
		for _, r := range s {
			out = append(out, byte(r), byte(r>>8))
		}
		return out
	}

	tests := []struct {
		name     string
		data     []byte
		wantText string
		wantEnc  string
		fallback bool
	}{
		{
			name:     "plain ascii is utf-8",
			data:     []byte("plain text"),
			wantText: "plain text",
			wantEnc:  "utf-8",
		},
		{
			name:     "valid utf-8 multibyte",
			data:     []byte("caf\xc3\xa9"),
			wantText: "café",
			wantEnc:  "utf-8",
		},
		{
			name:     "utf-16 little endian with BOM",
			data:     utf16LE("héllo"),
			wantText: "héllo",
			wantEnc:  "utf-16",
		},
		{
			name:     "windows-1252 smart quote",
			data:     []byte("it\x92s"),
			wantText: "it’s",
			wantEnc:  "windows-1252",
		},
		{
			name:     "undefined 1252 byte falls through to latin-1",
			data:     []byte("a\x81b\xe9"),
			wantText: "a\u0081bé",
			wantEnc:  "iso-8859-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, enc, fallback := decode(tt.data)
			if text != tt.wantText || enc != tt.wantEnc || fallback != tt.fallback {
				t.Errorf("decode() = (%q, %q, %v), want (%q, %q, %v)",
					text, enc, fallback, tt.wantText, tt.wantEnc, tt.fallback)
			}
		})
	}
}
