package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestApplyMarkupColor(t *testing.T) {
	got := applyMarkup("[red]X[-]", true)
	want := "\x1b[31mX\x1b[0m\x1b[0m"
	if got != want {
		t.Fatalf("color markup: got %q want %q", got, want)
	}
}

func TestApplyMarkupStrip(t *testing.T) {
	if got := applyMarkup("[red]X[-]", false); got != "X" {
		t.Fatalf("strip markup: got %q want %q", got, "X")
	}
	if got := applyMarkup("plain", false); got != "plain" {
		t.Fatalf("plain passthrough: got %q", got)
	}
}

func TestFrameAtPositionsCursor(t *testing.T) {
	f := newFrame(false)
	f.at(5, 10, "hello")
	var sink bytes.Buffer
	if err := f.flushTo(&sink); err != nil {
		t.Fatalf("flushTo: %v", err)
	}
	if got := sink.String(); got != "\x1b[5;10Hhello" {
		t.Fatalf("positioned write: got %q", got)
	}
}

func TestFrameBoxCharacters(t *testing.T) {
	colored := newFrame(true)
	colored.box(1, 1, 10, 4, "T")
	if !strings.Contains(colored.buf.String(), "┌") {
		t.Fatalf("color box should use Unicode borders")
	}

	mono := newFrame(false)
	mono.box(1, 1, 10, 4, "T")
	out := mono.buf.String()
	if strings.ContainsAny(out, "┌─┐│└┘") {
		t.Fatalf("mono box should be ASCII only: %q", out)
	}
	if !strings.Contains(out, "+--------+") {
		t.Fatalf("mono box border missing: %q", out)
	}
}

func TestFrameBoxTooSmallIsNoop(t *testing.T) {
	f := newFrame(true)
	f.box(1, 1, 3, 1, "T")
	if f.buf.Len() != 0 {
		t.Fatalf("undersized box should draw nothing")
	}
}

func TestClipAndPad(t *testing.T) {
	if got := clip("abcdef", 4); got != "abcd" {
		t.Fatalf("clip: got %q", got)
	}
	if got := clip("ab", 4); got != "ab" {
		t.Fatalf("clip short: got %q", got)
	}
	if got := pad("ab", 5); got != "ab   " {
		t.Fatalf("pad: got %q", got)
	}
	if got := pad("abcdef", 3); got != "abc" {
		t.Fatalf("pad overlong: got %q", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("abcdefgh", 3)
	want := []string{"abc", "def", "gh"}
	if len(lines) != len(want) {
		t.Fatalf("wrap count: got %v", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("wrap line %d: got %q want %q", i, lines[i], want[i])
		}
	}
}

func TestRenderErrorPanel(t *testing.T) {
	f := newFrame(true)
	renderErrorPanel(f, strings.Repeat("boom ", 100))
	out := f.buf.String()
	if !strings.Contains(out, "Upload Error") {
		t.Fatalf("panel title missing")
	}
	if !strings.Contains(out, "Press (R) to retry upload") {
		t.Fatalf("retry instruction missing")
	}
	// Detail is bounded before display.
	if strings.Count(out, "boom") > overlayDetailLimit/4 {
		t.Fatalf("detail not truncated")
	}
}
