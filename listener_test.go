package main

import (
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"wsjtx2eqsl/eqsl"
	"wsjtx2eqsl/qso"
)

func testApp(t *testing.T, sub submitter, autoUpload bool) *app {
	t.Helper()
	store := qso.NewStore()
	store.SetAutoUpload(autoUpload)
	tr := newTrail(filepath.Join(t.TempDir(), "trail.log"))
	a := &app{
		store: store,
		trail: tr,
	}
	a.upl = &uploader{
		client:   sub,
		store:    store,
		trail:    tr,
		username: "K5JCJ",
		password: "secret",
	}
	a.running.Store(true)
	return a
}

func TestProcessRecordAutoUpload(t *testing.T) {
	// The full scenario: parse, store mutation, then a successful upload
	// against a mock endpoint answering the positive marker.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("...RESULT: 1..."))
	}))
	defer srv.Close()

	a := testApp(t, eqsl.NewClient(srv.URL), true)
	a.processRecord("<call:5>K5JCJ<mode:3>FT8<band:3>20m<gridsquare:6>EM12ab")

	snap := a.store.Snapshot()
	if snap.Count != 1 || len(snap.Recent) != 1 {
		t.Fatalf("session state: count=%d history=%d", snap.Count, len(snap.Recent))
	}
	last := snap.Last
	if last.Call != "K5JCJ" || last.Mode != "FT8" || last.Band != "20m" || last.Grid != "EM12ab" {
		t.Fatalf("record fields: %+v", last)
	}
	if snap.UploadStatus != "Upload OK" {
		t.Fatalf("upload status: got %q", snap.UploadStatus)
	}
}

func TestProcessRecordManualMode(t *testing.T) {
	sub := &scriptedSubmitter{results: []eqsl.Result{{Outcome: eqsl.Success}}}
	a := testApp(t, sub, false)
	a.processRecord("<call:4>W1AW<mode:3>FT8<band:3>40m")

	if sub.calls != 0 {
		t.Fatalf("manual mode must not upload: calls=%d", sub.calls)
	}
	if snap := a.store.Snapshot(); snap.UploadStatus != "Manual mode" {
		t.Fatalf("status: got %q", snap.UploadStatus)
	}
}

func TestProcessRecordOverlongDeclaredLength(t *testing.T) {
	sub := &scriptedSubmitter{results: []eqsl.Result{{Outcome: eqsl.Success}}}
	a := testApp(t, sub, false)
	a.processRecord("<call:100>K5JCJ")

	snap := a.store.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("record should still be accepted: count=%d", snap.Count)
	}
	if snap.Last.Call != "K5JCJ" {
		t.Fatalf("call: got %q", snap.Last.Call)
	}
}

func TestListenLoopEndToEnd(t *testing.T) {
	sub := &scriptedSubmitter{results: []eqsl.Result{{Outcome: eqsl.Success}}}
	a := testApp(t, sub, false)

	conn, err := bindListener(0)
	if err != nil {
		t.Fatalf("bindListener: %v", err)
	}
	done := make(chan struct{})
	go func() {
		a.listenLoop(conn)
		close(done)
	}()
	defer func() {
		a.running.Store(false)
		<-done
	}()

	out, err := net.Dial("udp", conn.LocalAddr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer out.Close()

	payloads := []string{
		"not a record at all",                    // filtered structurally
		"<call:5>K5JCJ<mode:3>FT8<band:3>20m",    // accepted
		"<call:5>K5JCJ<mode:3>FT8<band:3>20m",    // duplicate, suppressed
		"<call:4>W1AW<mode:3>FT8<band:3>40m",     // accepted
		string([]byte{0xff, 0xfe}) + "<call:2>OK", // lossy decode, accepted
	}
	for _, p := range payloads {
		if _, err := out.Write([]byte(p)); err != nil {
			t.Fatalf("Write: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.Now().Add(3 * time.Second)
	for a.store.Count() < 3 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if got := a.store.Count(); got != 3 {
		t.Fatalf("accepted records: got %d want 3", got)
	}
}

func TestBindListenerConflictFails(t *testing.T) {
	first, err := bindListener(0)
	if err != nil {
		t.Fatalf("first bind: %v", err)
	}
	defer first.Close()

	port := first.LocalAddr().(*net.UDPAddr).Port
	if _, err := bindListener(port); err == nil {
		t.Fatalf("second bind on port %d should fail", port)
	}
}
