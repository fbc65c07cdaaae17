package main

import (
	"strings"
)

// overlayDetailLimit bounds the failure text shown in the error panel.
const overlayDetailLimit = 200

// Purpose: Modal upload-error prompt; decides between retry and dismiss.
// Key aspects: Takes exclusive terminal ownership (termMu) and sets the
// pause flag before writing, so no dashboard repaint interleaves; the state
// machine is ShowError -> WaitForKey -> Retry | Dismiss.
// Upstream: uploader on any non-success outcome.
// Downstream: renderErrorPanel, keyboard.requestKey.
func (a *app) promptRetry(detail string) bool {
	a.termMu.Lock()
	defer a.termMu.Unlock()
	a.store.SetPaused(true)
	defer a.store.SetPaused(false)

	// Claim the next keystroke before the panel is visible, so a key pressed
	// while it is drawing answers the prompt instead of firing a command.
	reply, ok := a.kb.claimKey()
	if !ok {
		return false
	}

	f := newFrame(a.store.Color())
	f.clearScreen()
	f.hideCursor()
	renderErrorPanel(f, detail)
	if err := f.flushTo(a.sink); err != nil {
		a.kb.releaseClaim()
		return false
	}

	key, ok := a.kb.awaitKey(reply, &a.running)
	if !ok {
		return false
	}
	if key == 'r' || key == 'R' {
		ack := newFrame(a.store.Color())
		ack.at(12, 3, "[yellow]Retrying upload...[-]")
		_ = ack.flushTo(a.sink)
		return true
	}
	return false
}

// renderErrorPanel draws the fixed upload-error panel into a frame.
func renderErrorPanel(f *frame, detail string) {
	detail = clip(strings.TrimSpace(detail), overlayDetailLimit)
	if detail == "" {
		detail = "(no response detail)"
	}

	const width = 46
	horiz := strings.Repeat("=", width-2)
	f.at(1, 1, "[red]+"+horiz+"+[-]")
	f.at(2, 1, "[red]|"+pad("            *** Upload Error ***", width-2)+"|[-]")
	f.at(3, 1, "[red]+"+horiz+"+[-]")
	f.at(5, 1, "[yellow]Failed to upload to eQSL.cc[-]")

	lines := wrapText(detail, 70)
	f.at(7, 1, "Error: "+lines[0])
	row := 8
	for _, line := range lines[1:] {
		f.at(row, 8, line)
		row++
	}

	f.at(row+1, 1, "[cyan]Press (R) to retry upload, or any other key to ignore...[-]")
}

// wrapText splits s into display lines of at most width bytes.
func wrapText(s string, width int) []string {
	if width <= 0 || s == "" {
		return nil
	}
	var lines []string
	for len(s) > width {
		lines = append(lines, s[:width])
		s = s[width:]
	}
	return append(lines, s)
}
