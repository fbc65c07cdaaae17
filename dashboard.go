package main

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"wsjtx2eqsl/qso"
)

const (
	dashMinWidth  = 60
	dashMinHeight = 20
	dashTick      = time.Second
)

// termLocker is the shared terminal-ownership lock; *sync.Mutex satisfies it.
// The dashboard only ever TryLocks: when a modal overlay or the menu owns the
// terminal the frame is dropped, never queued up behind the modal.
type termLocker interface {
	TryLock() bool
	Unlock()
}

// dashboard repaints a fixed-layout status screen once per tick from a
// snapshot of the session store. It holds no mutation rights over the store.
// The flush happens only while holding the terminal-ownership lock with the
// pause flag still clear, so a modal overlay owns the terminal alone.
type dashboard struct {
	store    *qso.Store
	username string
	sink     io.Writer
	term     termLocker
	size     func() (width, height int, err error)
	now      func() time.Time
}

func newDashboard(store *qso.Store, username string, sink io.Writer, lock termLocker) *dashboard {
	return &dashboard{
		store:    store,
		username: username,
		sink:     sink,
		term:     lock,
		size: func() (int, int, error) {
			return term.GetSize(int(os.Stdout.Fd()))
		},
		now: time.Now,
	}
}

// Purpose: Run the periodic repaint loop on the main goroutine.
// Key aspects: Exits when the running flag clears; each tick renders behind
// a panic barrier so a render bug costs one frame, not the process.
// Upstream: main after the background loops start.
// Downstream: renderTick per tick.
func (d *dashboard) run(running *atomic.Bool) {
	init := newFrame(d.store.Color())
	init.clearScreen()
	init.hideCursor()
	_ = init.flushTo(d.sink)

	ticker := time.NewTicker(dashTick)
	defer ticker.Stop()
	for running.Load() {
		<-ticker.C
		d.renderTick()
	}
}

// renderTick runs one repaint with a panic barrier, keeping the listener and
// input loops alive across a render fault.
func (d *dashboard) renderTick() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "dashboard panic: %v\n", r)
		}
	}()
	d.renderOnce()
}

// Purpose: Build and flush one complete frame.
// Key aspects: Checks the pause flag before building, then flushes only with
// the terminal-ownership lock held and the pause flag still clear; when a
// modal holds the lock the frame is dropped, never interleaved with the
// modal's writes. Undersized terminals get a one-line warning instead of the
// layout.
// Upstream: run ticker.
// Downstream: renderFrame, frame.flushTo.
func (d *dashboard) renderOnce() {
	if d.store.Paused() {
		return
	}
	width, height, err := d.size()
	if err != nil {
		width, height = 80, 24
	}

	f := newFrame(d.store.Color())
	f.clearScreen()
	f.hideCursor()
	if width < dashMinWidth || height < dashMinHeight {
		f.at(1, 1, fmt.Sprintf("[red]Terminal too small! Minimum %dx%d[-]", dashMinWidth, dashMinHeight))
	} else {
		d.renderFrame(f, d.store.Snapshot(), width, height)
	}

	if !d.term.TryLock() {
		return
	}
	defer d.term.Unlock()
	if d.store.Paused() {
		return
	}
	_ = f.flushTo(d.sink)
}

func (d *dashboard) renderFrame(f *frame, snap qso.Snapshot, width, height int) {
	d.renderHeader(f, width)
	half := width / 2
	d.renderStatus(f, snap, 1, 2, half-1)
	d.renderClock(f, half+1, 2, width-half)
	d.renderLastContact(f, snap.Last, 8, width)
	d.renderRecent(f, snap.Recent, 14, width, height)
	d.renderFooter(f, width, height)
}

func (d *dashboard) renderHeader(f *frame, width int) {
	f.at(1, 1, "[header]"+pad("", width))
	f.at(1, 3, "[header] wsjtx2eqsl v"+Version+" - WSJT-X to eQSL.cc Auto-Uploader")
	site := "www.jaycrutti.com"
	if pos := width - len(site) - 2; pos > 40 {
		f.at(1, pos, "[header]"+site)
	}
}

func (d *dashboard) renderStatus(f *frame, snap qso.Snapshot, x, y, width int) {
	f.box(x, y, width, 6, "STATUS")
	inner := width - 14
	f.at(y+1, x+2, "Connection:  [green]"+clip(snap.ConnStatus, inner)+"[-]")
	f.at(y+2, x+2, "Username:    [yellow]"+clip(d.username, inner)+"[-]")
	auto := "OFF"
	if d.store.AutoUpload() {
		auto = "ON"
	}
	f.at(y+3, x+2, "Auto-upload: [yellow]"+auto+"[-]")
	f.at(y+3, x+24, "QSOs: [cyan]"+humanize.Comma(int64(snap.Count))+"[-]")
	f.at(y+4, x+2, "Last upload: [yellow]"+clip(snap.UploadStatus, inner-1)+"[-]")
}

func (d *dashboard) renderClock(f *frame, x, y, width int) {
	f.box(x, y, width, 6, "TIME & DATE")
	utc := d.now().UTC()
	local := d.now()
	col1 := x + 2
	col2 := x + 23
	f.at(y+1, col1, "UTC Time: [cyan]"+utc.Format("15:04:05")+"[-]")
	f.at(y+2, col1, "UTC Date: [cyan]"+utc.Format("2006-01-02")+"[-]")
	f.at(y+3, col1, "UTC Day:  [cyan]"+utc.Format("Monday")+"[-]")
	if col2+16 < x+width {
		f.at(y+1, col2, "Time: [yellow]"+local.Format("15:04:05")+"[-]")
		f.at(y+2, col2, "Date: [yellow]"+local.Format("2006-01-02")+"[-]")
		f.at(y+3, col2, "Day:  [yellow]"+local.Format("Monday")+"[-]")
	}
}

func (d *dashboard) renderLastContact(f *frame, last *qso.Record, y, width int) {
	const boxHeight = 6
	f.box(1, y, width, boxHeight, "LAST CONTACT")
	if last == nil {
		f.at(y+boxHeight/2, width/2-8, "[gray]No contacts yet[-]")
		return
	}

	if width >= 80 {
		col2 := width/3 + 2
		col3 := 2*width/3 + 2
		f.at(y+1, 3, "Callsign: [yellow]"+last.Call+"[-]")
		f.at(y+1, col2, "Mode:     [yellow]"+last.Mode+"[-]")
		f.at(y+1, col3, "Band: [yellow]"+last.Band+"[-]")
		f.at(y+2, 3, "Grid:     [yellow]"+qso.OrNA(last.Grid)+"[-]")
		if last.Freq != "" {
			f.at(y+2, col2, "Freq:     [yellow]"+last.Freq+" MHz[-]")
		}
		if last.QSODate != "" {
			f.at(y+2, col3, "Date: [yellow]"+last.QSODate+"[-]")
		}
		if last.RSTSent != "" {
			f.at(y+3, 3, "RST Sent: [yellow]"+last.RSTSent+"[-]")
		}
		if last.RSTRcvd != "" {
			f.at(y+3, col2, "RST Rcvd: [yellow]"+last.RSTRcvd+"[-]")
		}
		if last.Time != "" {
			f.at(y+3, col3, "Time: [yellow]"+last.Time+"[-]")
		}
		f.at(y+4, 3, "Logged:   [cyan]"+last.LoggedAt.Format("15:04:05")+" UTC[-]")
		if last.Comment != "" {
			f.at(y+4, col2, "Comment:  [green]"+clip(last.Comment, width-col2-12)+"[-]")
		}
		return
	}

	// Narrow layout, stacked.
	f.at(y+1, 3, fmt.Sprintf("Call: [yellow]%s[-]  Mode: [yellow]%s[-]  Band: [yellow]%s[-]",
		last.Call, last.Mode, last.Band))
	grid := "Grid: [yellow]" + qso.OrNA(last.Grid) + "[-]"
	if last.Freq != "" {
		grid += "  Freq: [yellow]" + last.Freq + "[-]"
	}
	f.at(y+2, 3, grid)
	if last.RSTSent != "" || last.RSTRcvd != "" {
		f.at(y+3, 3, fmt.Sprintf("RST: [yellow]%s/%s[-]", qso.OrNA(last.RSTSent), qso.OrNA(last.RSTRcvd)))
	}
	f.at(y+4, 3, "Logged: [cyan]"+last.LoggedAt.Format("15:04:05")+" UTC[-]")
}

func (d *dashboard) renderRecent(f *frame, recent []*qso.Record, y, width, height int) {
	boxHeight := height - y
	if boxHeight < 4 {
		return
	}
	f.box(1, y, width, boxHeight, "RECENT CONTACTS")

	wide := width >= 70
	if wide {
		f.at(y+1, 3, "[bold]Call      Mode  Band   Grid    RST    Time    Comment[-]")
	} else {
		f.at(y+1, 3, "[bold]Call      Mode  Band   Time[-]")
	}

	max := boxHeight - 3
	if max > len(recent) {
		max = len(recent)
	}
	for i := 0; i < max; i++ {
		r := recent[i]
		row := y + 2 + i
		t := r.Time
		if t == "" {
			t = qso.NotAvailable
		}
		if wide {
			comment := clip(r.Comment, width-55)
			f.at(row, 3, fmt.Sprintf("[yellow]%s[-] %s %s %s %s %s  [green]%s[-]",
				pad(r.Call, 9), pad(r.Mode, 5), pad(r.Band, 6),
				pad(qso.OrNA(r.Grid), 7), pad(qso.OrNA(r.RSTRcvd), 6), pad(t, 6), comment))
		} else {
			f.at(row, 3, fmt.Sprintf("[yellow]%s[-] %s %s %s",
				pad(r.Call, 9), pad(r.Mode, 5), pad(r.Band, 6), pad(t, 6)))
		}
	}
}

func (d *dashboard) renderFooter(f *frame, width, height int) {
	f.at(height, 1, "[header]"+pad("", width))
	f.at(height, 3, "[header] Commands: (C)onfiguration | (Q)uit ")
}
