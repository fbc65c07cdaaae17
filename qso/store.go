package qso

import (
	"sync"
	"sync/atomic"
)

// RecentLimit bounds the recent-contact history kept in the store.
const RecentLimit = 10

// Store holds the shared session state. Field ownership:
//
//   - count, recent, last, uploadStatus: written by the listener/upload
//     pipeline only, read by the dashboard.
//   - connStatus: written by the listener at bind time, read by the dashboard.
//   - paused: written by the input handler and the retry overlay, read by the
//     dashboard before every repaint.
//   - autoUpload, debug, color: written by the configuration menu, read by
//     the listener, trail and dashboard.
//
// Every field is single-writer. The counter and flags are atomics; the
// compound fields (recent list, last record, status strings) share one mutex
// and are read through Snapshot so the dashboard never observes a
// partially-updated history.
type Store struct {
	count atomic.Uint64

	mu           sync.Mutex
	recent       []*Record
	last         *Record
	uploadStatus string
	connStatus   string

	paused     atomic.Bool
	autoUpload atomic.Bool
	debug      atomic.Bool
	color      atomic.Bool
}

// Snapshot is a consistent read of the renderable session state. The Recent
// slice is owned by the caller; the Records it points to are immutable.
type Snapshot struct {
	Count        uint64
	Recent       []*Record
	Last         *Record
	UploadStatus string
	ConnStatus   string
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{
		uploadStatus: "Ready",
		connStatus:   "Starting",
	}
}

// AddContact records a processed contact: bumps the monotonic counter,
// prepends to the bounded recent history (evicting the oldest beyond
// RecentLimit) and replaces the last-contact reference.
func (s *Store) AddContact(r *Record) {
	if r == nil {
		return
	}
	s.count.Add(1)

	s.mu.Lock()
	s.recent = append([]*Record{r}, s.recent...)
	if len(s.recent) > RecentLimit {
		s.recent = s.recent[:RecentLimit]
	}
	s.last = r
	s.mu.Unlock()
}

// Snapshot copies the compound state under the lock. Records themselves are
// shared but immutable.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	recent := make([]*Record, len(s.recent))
	copy(recent, s.recent)
	snap := Snapshot{
		Count:        s.count.Load(),
		Recent:       recent,
		Last:         s.last,
		UploadStatus: s.uploadStatus,
		ConnStatus:   s.connStatus,
	}
	s.mu.Unlock()
	return snap
}

// Count returns the total number of contacts processed this session.
func (s *Store) Count() uint64 {
	return s.count.Load()
}

// SetUploadStatus replaces the human-readable upload status line.
func (s *Store) SetUploadStatus(status string) {
	s.mu.Lock()
	s.uploadStatus = status
	s.mu.Unlock()
}

// SetConnStatus replaces the human-readable connection status line.
func (s *Store) SetConnStatus(status string) {
	s.mu.Lock()
	s.connStatus = status
	s.mu.Unlock()
}

// SetPaused gates dashboard repainting. While true, only the active modal
// overlay may write to the terminal.
func (s *Store) SetPaused(v bool) { s.paused.Store(v) }

// Paused reports whether dashboard repainting is suspended.
func (s *Store) Paused() bool { return s.paused.Load() }

// SetAutoUpload toggles automatic uploading; takes effect on the next contact.
func (s *Store) SetAutoUpload(v bool) { s.autoUpload.Store(v) }

// AutoUpload reports whether accepted contacts are uploaded automatically.
func (s *Store) AutoUpload() bool { return s.autoUpload.Load() }

// SetDebug toggles verbose activity-trail lines.
func (s *Store) SetDebug(v bool) { s.debug.Store(v) }

// Debug reports whether verbose trail lines are enabled.
func (s *Store) Debug() bool { return s.debug.Load() }

// SetColor toggles color rendering; takes effect on the next repaint.
func (s *Store) SetColor(v bool) { s.color.Store(v) }

// Color reports whether the dashboard renders with ANSI color and Unicode
// boxes (false selects the plain-ASCII monochrome fallback).
func (s *Store) Color() bool { return s.color.Load() }
