package main

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"wsjtx2eqsl/adif"
	"wsjtx2eqsl/qso"
)

const (
	listenerReadTimeout = time.Second
	datagramBufferSize  = 4096
)

// bindListener binds the inbound UDP socket. A bind failure is fatal to the
// caller: nothing works without the socket.
func bindListener(port int) (net.PacketConn, error) {
	conn, err := net.ListenPacket("udp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to bind UDP port %d: %w", port, err)
	}
	return conn, nil
}

// Purpose: Receive loop for WSJT-X logged-ADIF datagrams.
// Key aspects: Bounded read deadline so the running flag is observed within a
// second; noise is filtered structurally before parsing; uploads run inline,
// so a slow or retried upload stalls later datagrams (accepted backpressure,
// at most one upload in flight).
// Upstream: goroutine started in main after a successful bind.
// Downstream: adif.Plausible, dedupeWindow.duplicate, processRecord.
func (a *app) listenLoop(conn net.PacketConn) {
	defer conn.Close()

	dedupe := newDedupeWindow(dedupeWindowDefault)
	buf := make([]byte, datagramBufferSize)

	for a.running.Load() {
		_ = conn.SetReadDeadline(time.Now().Add(listenerReadTimeout))
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if !a.running.Load() {
				return
			}
			a.trail.Logf("Receive error - %v", err)
			continue
		}

		// Undecodable bytes are replaced, never fatal.
		msg := strings.TrimSpace(strings.ToValidUTF8(string(buf[:n]), "�"))
		if msg == "" || !adif.Plausible(msg) {
			if a.store.Debug() {
				a.trail.Logf("Discarded datagram (%d bytes): %s", n, clip(msg, 60))
			}
			continue
		}
		if dedupe.duplicate(msg, time.Now()) {
			if a.store.Debug() {
				a.trail.Logf("Duplicate datagram suppressed (%d so far)", dedupe.suppressed)
			}
			continue
		}

		a.processRecord(msg)
	}
}

// Purpose: Run one accepted record through the pipeline.
// Key aspects: Parse, mutate session state, log, then upload (or mark manual
// mode). The raw text is uploaded verbatim so eQSL sees every original field.
// Upstream: listenLoop.
// Downstream: adif.Parse, qso.Store.AddContact, uploader.upload.
func (a *app) processRecord(raw string) {
	fields := adif.Parse(raw)
	rec := qso.FromFields(fields, time.Now())

	a.store.AddContact(rec)
	a.trail.Logf("QSO with %s on %s/%s", rec.Call, rec.Mode, rec.Band)
	if a.store.Debug() {
		a.trail.Logf("Raw record: %s", clip(raw, 200))
	}

	if a.store.AutoUpload() {
		a.upl.upload(context.Background(), raw)
	} else {
		a.store.SetUploadStatus("Manual mode")
	}
}
