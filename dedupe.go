package main

import (
	"time"

	"github.com/zeebo/xxh3"
)

// dedupeWindowDefault is how long a byte-identical datagram is suppressed.
// WSJT-X companion tools sometimes rebroadcast the logged-ADIF datagram;
// without this a single QSO would be counted and uploaded twice.
const dedupeWindowDefault = 5 * time.Second

// dedupeWindow suppresses repeats of the same payload inside a time window,
// keyed by xxh3 hash. It is used only by the listener goroutine, so it needs
// no locking.
type dedupeWindow struct {
	window     time.Duration
	seen       map[uint64]time.Time
	suppressed uint64
}

func newDedupeWindow(window time.Duration) *dedupeWindow {
	if window <= 0 {
		window = dedupeWindowDefault
	}
	return &dedupeWindow{
		window: window,
		seen:   make(map[uint64]time.Time),
	}
}

// duplicate reports whether payload was already seen inside the window, and
// records this sighting either way. Expired entries are pruned opportunistically
// so the map stays bounded at human QSO rates.
func (d *dedupeWindow) duplicate(payload string, now time.Time) bool {
	if len(d.seen) > 64 {
		for h, at := range d.seen {
			if now.Sub(at) > d.window {
				delete(d.seen, h)
			}
		}
	}

	h := xxh3.HashString(payload)
	last, ok := d.seen[h]
	d.seen[h] = now
	if ok && now.Sub(last) < d.window {
		d.suppressed++
		return true
	}
	return false
}
