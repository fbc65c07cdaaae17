package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// frame accumulates one complete screen repaint and flushes it with a single
// write, so a concurrent observer (or a recording sink in tests) sees either
// the whole frame or nothing. Color selects ANSI SGR markup and Unicode box
// drawing; monochrome strips all SGR and falls back to plain-ASCII boxes.
type frame struct {
	buf   bytes.Buffer
	color bool
}

func newFrame(color bool) *frame {
	return &frame{color: color}
}

func (f *frame) clearScreen() { f.buf.WriteString("\x1b[2J") }
func (f *frame) hideCursor()  { f.buf.WriteString("\x1b[?25l") }
func (f *frame) showCursor()  { f.buf.WriteString("\x1b[?25h") }

// at writes markup-processed text at a 1-based row/column position.
func (f *frame) at(row, col int, text string) {
	fmt.Fprintf(&f.buf, "\x1b[%d;%dH", row, col)
	f.buf.WriteString(applyMarkup(text, f.color))
}

// box draws a bordered box with an optional title in the top border.
// Interiors are left untouched; the frame clears the whole screen first.
func (f *frame) box(x, y, width, height int, title string) {
	if width < 4 || height < 2 {
		return
	}
	tl, horiz, tr, vert, bl, br := "+", "-", "+", "|", "+", "+"
	if f.color {
		tl, horiz, tr, vert, bl, br = "┌", "─", "┐", "│", "└", "┘"
	}
	f.at(y, x, tl+strings.Repeat(horiz, width-2)+tr)
	if title != "" && len(title)+4 < width {
		f.at(y, x+2, " "+title+" ")
	}
	for i := 1; i < height-1; i++ {
		f.at(y+i, x, vert)
		f.at(y+i, x+width-1, vert)
	}
	f.at(y+height-1, x, bl+strings.Repeat(horiz, width-2)+br)
}

// flushTo emits the accumulated frame in one write.
func (f *frame) flushTo(w io.Writer) error {
	_, err := f.buf.WriteTo(w)
	return err
}

// clip bounds a string to max bytes for fixed-width panels.
func clip(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) > max {
		return s[:max]
	}
	return s
}

// pad left-justifies s into a field of exactly width bytes.
func pad(s string, width int) string {
	s = clip(s, width)
	if len(s) < width {
		s += strings.Repeat(" ", width-len(s))
	}
	return s
}

// Purpose: Apply or strip the bracketed markup tokens used by the renderer.
// Key aspects: Color mode appends a reset whenever markup is present;
// monochrome mode strips tokens so no SGR ever reaches the terminal.
// Upstream: frame.at.
// Downstream: strings.Replacer instances.
func applyMarkup(line string, enableColor bool) string {
	if line == "" {
		return line
	}
	if enableColor {
		hasMarkup := strings.Contains(line, "[")
		line = markupColorReplacer.Replace(line)
		if hasMarkup {
			line += resetSGR
		}
		return line
	}
	return markupStripReplacer.Replace(line)
}

const resetSGR = "\x1b[0m"

var markupColorReplacer = strings.NewReplacer(
	"[red]", "\x1b[31m",
	"[green]", "\x1b[32m",
	"[yellow]", "\x1b[33m",
	"[blue]", "\x1b[34m",
	"[magenta]", "\x1b[35m",
	"[cyan]", "\x1b[36m",
	"[white]", "\x1b[97m",
	"[gray]", "\x1b[90m",
	"[bold]", "\x1b[1m",
	"[header]", "\x1b[44m\x1b[97m",
	"[-]", resetSGR,
)

var markupStripReplacer = strings.NewReplacer(
	"[red]", "",
	"[green]", "",
	"[yellow]", "",
	"[blue]", "",
	"[magenta]", "",
	"[cyan]", "",
	"[white]", "",
	"[gray]", "",
	"[bold]", "",
	"[header]", "",
	"[-]", "",
)
