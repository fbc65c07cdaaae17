package main

import (
	"context"

	"wsjtx2eqsl/eqsl"
	"wsjtx2eqsl/qso"
)

// submitter is the outbound half of the upload pipeline. *eqsl.Client
// implements it; tests substitute scripted fakes.
type submitter interface {
	Submit(ctx context.Context, adif, username, password string) eqsl.Result
}

// uploader drives one record through submit/classify/retry and keeps the
// session store's upload status current. promptRetry is the modal overlay
// hook; when nil (headless tests) failures are final.
type uploader struct {
	client      submitter
	store       *qso.Store
	trail       *trail
	username    string
	password    string
	promptRetry func(detail string) bool
}

// Purpose: Submit one raw ADIF record, retrying on explicit user request.
// Key aspects: The retry is a loop, never recursion, so repeated manual
// retries cannot grow the stack; each attempt updates the status line before
// and after. Never panics past this boundary.
// Upstream: listener pipeline when auto-upload is on; config menu re-send.
// Downstream: submitter.Submit, promptRetry overlay.
func (u *uploader) upload(ctx context.Context, adif string) eqsl.Outcome {
	for {
		u.store.SetUploadStatus("Uploading...")
		res := u.client.Submit(ctx, adif, u.username, u.password)

		switch res.Outcome {
		case eqsl.Success:
			u.store.SetUploadStatus("Upload OK")
			u.trail.Logf("Upload successful")
			return res.Outcome
		case eqsl.Rejected:
			u.store.SetUploadStatus("Upload Failed")
			u.trail.Logf("Upload failed - %s", clip(res.Detail, 100))
		default:
			u.store.SetUploadStatus("Error: " + clip(res.Detail, 20))
			u.trail.Logf("Upload error - %s", clip(res.Detail, 200))
		}
		if u.store.Debug() {
			u.trail.Logf("Upload response detail: %s", res.Detail)
		}

		if u.promptRetry == nil || !u.promptRetry(res.Detail) {
			return res.Outcome
		}
		u.trail.Logf("Retrying upload at user request")
	}
}
