package bookmark

import (
	"strings"
	"testing"
	"time"
)

func TestToggle(t *testing.T) {
	s := NewSet()

	if added := s.Toggle(10, "ERROR something"); !added {
		t.Fatal("first Toggle() should add")
	}
	if !s.Has(10) || s.Len() != 1 {
		t.Fatal("mark not present after add")
	}
	m := s.List()[0]
	if m.Line != 10 || m.Preview != "ERROR something" || m.CreatedAt.IsZero() {
		t.Errorf("mark = %+v", m)
	}

	// Toggling twice restores the original bookmark-absent state.
	if added := s.Toggle(10, "ERROR something"); added {
		t.Fatal("second Toggle() should remove")
	}
	if s.Has(10) || s.Len() != 0 {
		t.Error("mark still present after second toggle")
	}
}

func TestListStaysSorted(t *testing.T) {
	s := NewSet()
	for _, line := range []int{30, 5, 99, 12} {
		s.Toggle(line, "")
	}
	got := s.List()
	want := []int{5, 12, 30, 99}
	for i, m := range got {
		if m.Line != want[i] {
			t.Fatalf("List() order = %v", got)
		}
	}
}

func TestPreviewTruncated(t *testing.T) {
	s := NewSet()
	long := strings.Repeat("x", 120)
	s.Toggle(1, "  "+long)
	got := s.List()[0].Preview
	if len(got) != PreviewWidth {
		t.Errorf("preview length = %d, want %d", len(got), PreviewWidth)
	}
	if strings.HasPrefix(got, " ") {
		t.Error("preview not trimmed")
	}
}

func TestCyclicNavigation(t *testing.T) {
	s := NewSet()
	for _, line := range []int{5, 12, 30} {
		s.Toggle(line, "")
	}

	tests := []struct {
		name string
		call func(int) (Mark, bool)
		from int
		want int
	}{
		{"next between marks", s.NextAfter, 5, 12},
		{"next from before all", s.NextAfter, 0, 5},
		{"next wraps from last", s.NextAfter, 30, 5},
		{"next wraps from past all", s.NextAfter, 99, 5},
		{"previous between marks", s.PreviousBefore, 12, 5},
		{"previous from after all", s.PreviousBefore, 99, 30},
		{"previous wraps from first", s.PreviousBefore, 5, 30},
		{"previous wraps from before all", s.PreviousBefore, 1, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := tt.call(tt.from)
			if !ok || m.Line != tt.want {
				t.Errorf("got (%d, %v), want (%d, true)", m.Line, ok, tt.want)
			}
		})
	}
}

func TestNavigationEmptySet(t *testing.T) {
	s := NewSet()
	if _, ok := s.NextAfter(1); ok {
		t.Error("NextAfter on empty set should report false")
	}
	if _, ok := s.PreviousBefore(1); ok {
		t.Error("PreviousBefore on empty set should report false")
	}
}

func TestFromMarks(t *testing.T) {
	now := time.Now()
	s := FromMarks([]Mark{
		{Line: 9, Preview: "nine", CreatedAt: now},
		{Line: 3, Preview: "three", CreatedAt: now},
		{Line: 9, Preview: "duplicate", CreatedAt: now},
		{Line: 0, Preview: "invalid", CreatedAt: now},
	})
	got := s.List()
	if len(got) != 2 || got[0].Line != 3 || got[1].Line != 9 {
		t.Fatalf("FromMarks() = %+v", got)
	}
	if got[1].Preview != "nine" {
		t.Errorf("duplicate should not replace the first occurrence: %q", got[1].Preview)
	}
}

func TestClear(t *testing.T) {
	s := NewSet()
	s.Toggle(1, "")
	s.Toggle(2, "")
	s.Clear()
	if s.Len() != 0 || s.Has(1) {
		t.Error("Clear() left marks behind")
	}
}
