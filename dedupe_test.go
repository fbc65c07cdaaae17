package main

import (
	"fmt"
	"testing"
	"time"
)

func TestDedupeSuppressesRepeatInWindow(t *testing.T) {
	d := newDedupeWindow(5 * time.Second)
	now := time.Now()
	payload := "<call:5>K5JCJ<band:3>20m"

	if d.duplicate(payload, now) {
		t.Fatalf("first sighting flagged as duplicate")
	}
	if !d.duplicate(payload, now.Add(2*time.Second)) {
		t.Fatalf("repeat inside window not suppressed")
	}
	if d.suppressed != 1 {
		t.Fatalf("suppressed count: got %d want 1", d.suppressed)
	}
}

func TestDedupeAllowsRepeatAfterWindow(t *testing.T) {
	d := newDedupeWindow(5 * time.Second)
	now := time.Now()
	payload := "<call:5>K5JCJ"

	d.duplicate(payload, now)
	if d.duplicate(payload, now.Add(6*time.Second)) {
		t.Fatalf("repeat after window should pass")
	}
}

func TestDedupeDistinctPayloadsPass(t *testing.T) {
	d := newDedupeWindow(5 * time.Second)
	now := time.Now()
	if d.duplicate("<call:5>K5JCJ", now) || d.duplicate("<call:4>W1AW", now) {
		t.Fatalf("distinct payloads flagged as duplicates")
	}
}

func TestDedupePrunesExpiredEntries(t *testing.T) {
	d := newDedupeWindow(time.Second)
	start := time.Now()
	for i := 0; i < 100; i++ {
		d.duplicate(fmt.Sprintf("<call:6>CALL%02d", i), start)
	}
	// All earlier entries are expired by now and get pruned on the next call.
	d.duplicate("<call:4>W1AW", start.Add(10*time.Second))
	if len(d.seen) > 65 {
		t.Fatalf("expired entries not pruned: %d retained", len(d.seen))
	}
}
