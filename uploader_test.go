package main

import (
	"context"
	"path/filepath"
	"testing"

	"wsjtx2eqsl/eqsl"
	"wsjtx2eqsl/qso"
)

// scriptedSubmitter returns canned results in order, repeating the last.
type scriptedSubmitter struct {
	results []eqsl.Result
	calls   int
}

func (s *scriptedSubmitter) Submit(ctx context.Context, adif, username, password string) eqsl.Result {
	i := s.calls
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	s.calls++
	return s.results[i]
}

func testUploader(t *testing.T, sub submitter, retry func(string) bool) (*uploader, *qso.Store) {
	t.Helper()
	store := qso.NewStore()
	return &uploader{
		client:      sub,
		store:       store,
		trail:       newTrail(filepath.Join(t.TempDir(), "trail.log")),
		username:    "K5JCJ",
		password:    "secret",
		promptRetry: retry,
	}, store
}

func TestUploadSuccessSetsStatus(t *testing.T) {
	sub := &scriptedSubmitter{results: []eqsl.Result{{Outcome: eqsl.Success}}}
	u, store := testUploader(t, sub, nil)

	if got := u.upload(context.Background(), "<call:5>K5JCJ"); got != eqsl.Success {
		t.Fatalf("outcome: got %v", got)
	}
	if snap := store.Snapshot(); snap.UploadStatus != "Upload OK" {
		t.Fatalf("status: got %q", snap.UploadStatus)
	}
	if sub.calls != 1 {
		t.Fatalf("submit calls: got %d want 1", sub.calls)
	}
}

func TestUploadRejectedWithoutRetry(t *testing.T) {
	sub := &scriptedSubmitter{results: []eqsl.Result{
		{Outcome: eqsl.Rejected, Detail: "Error: No such Callsign"},
	}}
	declined := 0
	u, store := testUploader(t, sub, func(detail string) bool {
		declined++
		if detail != "Error: No such Callsign" {
			t.Errorf("overlay detail: got %q", detail)
		}
		return false
	})

	if got := u.upload(context.Background(), "<call:5>K5JCJ"); got != eqsl.Rejected {
		t.Fatalf("outcome: got %v", got)
	}
	if declined != 1 {
		t.Fatalf("retry prompt invocations: got %d want 1", declined)
	}
	if snap := store.Snapshot(); snap.UploadStatus != "Upload Failed" {
		t.Fatalf("status: got %q", snap.UploadStatus)
	}
	if sub.calls != 1 {
		t.Fatalf("declined retry should not resubmit: calls=%d", sub.calls)
	}
}

func TestUploadRetriesUntilSuccess(t *testing.T) {
	sub := &scriptedSubmitter{results: []eqsl.Result{
		{Outcome: eqsl.TransportError, Detail: "connection refused"},
		{Outcome: eqsl.TransportError, Detail: "connection refused"},
		{Outcome: eqsl.Success},
	}}
	retries := 0
	u, store := testUploader(t, sub, func(string) bool {
		retries++
		return true
	})

	if got := u.upload(context.Background(), "<call:5>K5JCJ"); got != eqsl.Success {
		t.Fatalf("outcome: got %v", got)
	}
	if sub.calls != 3 || retries != 2 {
		t.Fatalf("calls=%d retries=%d, want 3 and 2", sub.calls, retries)
	}
	if snap := store.Snapshot(); snap.UploadStatus != "Upload OK" {
		t.Fatalf("status after retried success: got %q", snap.UploadStatus)
	}
}

func TestUploadTransportErrorStatusTruncated(t *testing.T) {
	long := "dial tcp 127.0.0.1:443: connect: network is unreachable"
	sub := &scriptedSubmitter{results: []eqsl.Result{
		{Outcome: eqsl.TransportError, Detail: long},
	}}
	u, store := testUploader(t, sub, nil)

	if got := u.upload(context.Background(), "<call:5>K5JCJ"); got != eqsl.TransportError {
		t.Fatalf("outcome: got %v", got)
	}
	want := "Error: " + long[:20]
	if snap := store.Snapshot(); snap.UploadStatus != want {
		t.Fatalf("status: got %q want %q", snap.UploadStatus, want)
	}
}

func TestUploadNilPromptNeverRetries(t *testing.T) {
	sub := &scriptedSubmitter{results: []eqsl.Result{
		{Outcome: eqsl.TransportError, Detail: "timeout"},
	}}
	u, _ := testUploader(t, sub, nil)
	u.upload(context.Background(), "<call:5>K5JCJ")
	if sub.calls != 1 {
		t.Fatalf("nil prompt should be a single attempt: calls=%d", sub.calls)
	}
}
