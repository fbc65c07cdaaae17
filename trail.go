package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

const (
	trailTimestampLayout = "2006-01-02 15:04:05"
	trailMaxBytes        = 500 * 1024
	trailKeepLines       = 1000
	maxTrailBufferBytes  = 16 * 1024
)

// trail is the append-only activity log: one timestamped line per event. It
// doubles as the sink for the stdlib logger so stray log output never reaches
// the terminal while the dashboard owns it.
//
// When the file grows past maxBytes it is truncated to its most recent
// keepLines lines, with a header line noting the rotation.
type trail struct {
	mu          sync.Mutex
	path        string
	file        *os.File
	size        int64
	buf         []byte
	lastErrorAt time.Time

	// Rotation bounds; tests shrink them.
	maxBytes  int64
	keepLines int
}

// Purpose: Create the activity trail writer for a path.
// Key aspects: Opens lazily on first write; existing file size is respected.
// Upstream: main startup.
// Downstream: None until the first write.
func newTrail(path string) *trail {
	return &trail{
		path:      path,
		maxBytes:  trailMaxBytes,
		keepLines: trailKeepLines,
	}
}

// Path returns the trail file location for the shutdown summary.
func (t *trail) Path() string {
	return t.path
}

// Logf appends one formatted event line, timestamped in UTC.
func (t *trail) Logf(format string, args ...any) {
	if t == nil {
		return
	}
	t.writeLine(fmt.Sprintf(format, args...), time.Now())
}

// Purpose: Append one timestamped line and rotate when oversized.
// Key aspects: Keeps the file handle open across writes; errors go to stderr
// rate-limited so a full disk cannot flood the console.
// Upstream: Logf and Write.
// Downstream: openLocked, rotateLocked.
func (t *trail) writeLine(line string, now time.Time) {
	now = now.UTC()
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.openLocked(); err != nil {
		t.reportErrorLocked(now, err)
		return
	}
	n, err := t.file.WriteString(now.Format(trailTimestampLayout) + ": " + line + "\n")
	if err != nil {
		t.reportErrorLocked(now, fmt.Errorf("trail write failed: %w", err))
		return
	}
	t.size += int64(n)
	if t.size > t.maxBytes {
		if err := t.rotateLocked(now); err != nil {
			t.reportErrorLocked(now, fmt.Errorf("trail rotation failed: %w", err))
		}
	}
}

func (t *trail) openLocked() error {
	if t.file != nil {
		return nil
	}
	file, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open trail %q: %w", t.path, err)
	}
	info, err := file.Stat()
	if err == nil {
		t.size = info.Size()
	}
	t.file = file
	return nil
}

// Purpose: Truncate the trail to its most recent keepLines lines.
// Key aspects: Rewrites the file with a rotation header noting the previous
// size, then reopens for appending.
// Upstream: writeLine when size exceeds maxBytes.
// Downstream: os.ReadFile / os.WriteFile on the trail path.
func (t *trail) rotateLocked(now time.Time) error {
	prevSize := t.size
	if t.file != nil {
		_ = t.file.Close()
		t.file = nil
	}

	data, err := os.ReadFile(t.path)
	if err != nil {
		return err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > t.keepLines {
		lines = lines[len(lines)-t.keepLines:]
	}

	header := fmt.Sprintf("%s: === trail rotated, kept last %d lines (was %s) ===",
		now.Format(trailTimestampLayout), len(lines), humanize.Bytes(uint64(prevSize)))
	out := header + "\n" + strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(t.path, []byte(out), 0644); err != nil {
		return err
	}
	t.size = int64(len(out))
	return t.openLocked()
}

func (t *trail) reportErrorLocked(now time.Time, err error) {
	if err == nil {
		return
	}
	if !t.lastErrorAt.IsZero() && now.Sub(t.lastErrorAt) < time.Minute {
		return
	}
	t.lastErrorAt = now
	fmt.Fprintf(os.Stderr, "Trail: %v\n", err)
}

// Purpose: Accept stdlib log output as trail lines.
// Key aspects: Line-buffered with bounded internal storage, mirroring the
// console writer in the dashboard path.
// Upstream: log.SetOutput in main.
// Downstream: writeLine per complete line.
func (t *trail) Write(p []byte) (int, error) {
	if t == nil {
		return len(p), nil
	}
	t.mu.Lock()
	t.buf = append(t.buf, p...)
	data := t.buf
	var lines []string
	for {
		idx := bytes.IndexByte(data, '\n')
		if idx == -1 {
			break
		}
		lines = append(lines, string(bytes.TrimRight(data[:idx], "\r")))
		data = data[idx+1:]
	}
	if len(data) > maxTrailBufferBytes {
		if trimmed := string(bytes.TrimRight(data, "\r")); trimmed != "" {
			lines = append(lines, trimmed)
		}
		data = data[:0]
	}
	t.buf = data
	t.mu.Unlock()

	now := time.Now()
	for _, line := range lines {
		t.writeLine(line, now)
	}
	return len(p), nil
}

// Close flushes and closes the trail file.
func (t *trail) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}
