// Package eqsl submits logged ADIF records to the eQSL.cc ImportADIF
// endpoint and classifies the response.
//
// eQSL has no structured API: the endpoint answers an HTML page, and the only
// reliable success signal is a "Result: 1" or "Success" token somewhere in the
// body. The classification here deliberately preserves that substring
// heuristic rather than inventing a stricter contract.
package eqsl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultURL is the eQSL.cc ADIF import endpoint.
const DefaultURL = "https://www.eqsl.cc/qslcard/ImportADIF.cfm"

// SubmitTimeout bounds one upload attempt end to end.
const SubmitTimeout = 30 * time.Second

// maxBodyBytes caps how much of the response page is read for classification.
const maxBodyBytes = 64 * 1024

// detailLimit bounds the failure detail carried back to the UI.
const detailLimit = 200

// Outcome classifies one upload attempt.
type Outcome int

const (
	// Success means the service acknowledged the record.
	Success Outcome = iota
	// Rejected means the service answered but without a success marker.
	Rejected
	// TransportError means the request never completed (network error,
	// timeout, or an unreadable response).
	TransportError
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Rejected:
		return "rejected"
	case TransportError:
		return "transport error"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the classified outcome of one upload attempt. Detail is a short
// human-readable summary, bounded for display in the status line and overlay.
type Result struct {
	Outcome Outcome
	Detail  string
}

// Client uploads ADIF records to one fixed endpoint. Submit never panics and
// never returns an error: every failure mode collapses into a Result.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a client for the given endpoint; an empty endpoint
// selects DefaultURL.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: SubmitTimeout},
	}
}

// Submit posts one raw ADIF record with the account credentials and
// classifies the response body.
func (c *Client) Submit(ctx context.Context, adif, username, password string) Result {
	form := url.Values{
		"EQSL_USER": {username},
		"EQSL_PSWD": {password},
		"ADIFData":  {adif},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{Outcome: TransportError, Detail: truncateDetail(err.Error())}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{Outcome: TransportError, Detail: truncateDetail(err.Error())}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{Outcome: TransportError, Detail: truncateDetail(err.Error())}
	}

	return Classify(string(body))
}

// Classify applies the eQSL success heuristic to a response body: success iff
// the lower-cased body contains "result: 1" or "success".
func Classify(body string) Result {
	lower := strings.ToLower(body)
	if strings.Contains(lower, "result: 1") || strings.Contains(lower, "success") {
		return Result{Outcome: Success}
	}
	return Result{Outcome: Rejected, Detail: truncateDetail(body)}
}

func truncateDetail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > detailLimit {
		s = s[:detailLimit]
	}
	return s
}
