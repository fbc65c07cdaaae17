package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

const keyPollInterval = 100 * time.Millisecond

// keyboard owns stdin: it is the only reader of the terminal input. Single
// keystrokes are read in raw mode with a short deadline so the running flag
// is observed promptly. A modal overlay running on another goroutine borrows
// one keystroke through the takeover channel instead of reading stdin itself.
type keyboard struct {
	in       *os.File
	raw      *term.State
	takeover chan chan byte
}

func newKeyboard(in *os.File) *keyboard {
	return &keyboard{
		in:       in,
		takeover: make(chan chan byte, 1),
	}
}

// makeRaw switches the terminal to raw single-keystroke input. The saved
// state is kept so every exit path can restore it.
func (k *keyboard) makeRaw() error {
	st, err := term.MakeRaw(int(k.in.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw terminal mode: %w", err)
	}
	k.raw = st
	return nil
}

// restore returns the terminal to its original (cooked) mode. Safe to call
// repeatedly; the raw state survives so reRaw can switch back.
func (k *keyboard) restore() {
	if k.raw != nil {
		_ = term.Restore(int(k.in.Fd()), k.raw)
	}
}

// reRaw re-enters raw mode after a cooked-mode interlude (the config menu).
func (k *keyboard) reRaw() error {
	if k.raw == nil {
		return k.makeRaw()
	}
	_, err := term.MakeRaw(int(k.in.Fd()))
	if err != nil {
		return fmt.Errorf("failed to re-enter raw terminal mode: %w", err)
	}
	return nil
}

// Purpose: Read one keystroke with a bounded wait.
// Key aspects: Uses a read deadline on the tty so the caller can interleave
// running-flag checks; the deadline is always cleared afterwards.
// Upstream: inputLoop and requestKey service path.
// Downstream: os.File reads on stdin.
func (k *keyboard) pollKey(timeout time.Duration) (byte, bool) {
	_ = k.in.SetReadDeadline(time.Now().Add(timeout))
	var b [1]byte
	n, err := k.in.Read(b[:])
	_ = k.in.SetReadDeadline(time.Time{})
	if err != nil || n == 0 {
		return 0, false
	}
	return b[0], true
}

// claimKey queues a takeover entry so the next keystroke is diverted to the
// returned channel instead of the command switch. A modal must claim before
// drawing its prompt; a key pressed mid-draw is then held for the modal and
// cannot fire a command underneath it.
func (k *keyboard) claimKey() (chan byte, bool) {
	reply := make(chan byte, 1)
	select {
	case k.takeover <- reply:
		return reply, true
	default:
		return nil, false
	}
}

// awaitKey waits for the claimed keystroke, checking the running flag.
// When it gives up during shutdown the claim is withdrawn, so a later
// keystroke is never diverted into a channel nobody reads.
func (k *keyboard) awaitKey(reply chan byte, running *atomic.Bool) (byte, bool) {
	for {
		select {
		case key := <-reply:
			return key, true
		case <-time.After(keyPollInterval):
			if !running.Load() {
				k.releaseClaim()
				return 0, false
			}
		}
	}
}

// releaseClaim withdraws a pending keystroke claim. A key already taken by
// the input loop for the claim is dropped, which only happens on the
// shutdown and flush-error paths.
func (k *keyboard) releaseClaim() {
	select {
	case <-k.takeover:
	default:
	}
}

// Purpose: Background keystroke loop.
// Key aspects: Polls with a bounded wait so the running flag is observed;
// keys are diverted to a pending overlay before command dispatch.
// Upstream: goroutine started in main.
// Downstream: shutdown and configMenu.
func (a *app) inputLoop() {
	for a.running.Load() {
		key, ok := a.kb.pollKey(keyPollInterval)
		if !ok {
			continue
		}

		// An active overlay gets the keystroke instead of the command switch.
		select {
		case reply := <-a.kb.takeover:
			reply <- key
			continue
		default:
		}

		switch key {
		case 'q', 'Q', 0x03: // ctrl-C arrives as a byte in raw mode
			a.shutdown()
		case 'c', 'C':
			a.configMenu()
		}
	}
}
