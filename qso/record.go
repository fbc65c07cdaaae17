// Package qso defines the canonical contact record produced from a parsed
// ADIF broadcast and the shared session store read by the dashboard while the
// listener pipeline mutates it.
package qso

import "time"

// NotAvailable is the placeholder shown for absent optional fields.
const NotAvailable = "N/A"

// Record is one normalized logged contact. Records are built once by
// FromFields and never mutated afterwards, so readers may hold a *Record
// across renders without copying.
type Record struct {
	Call     string    // Worked station callsign
	Mode     string    // Operating mode (FT8, FT4, ...)
	Band     string    // Band (e.g. "20m")
	Freq     string    // Frequency in MHz, as logged
	Grid     string    // Maidenhead grid locator
	RSTSent  string    // Signal report sent
	RSTRcvd  string    // Signal report received
	QSODate  string    // QSO date as logged (YYYYMMDD)
	Time     string    // QSO time; time_off preferred over time_on
	Comment  string    // Free-text comment
	LoggedAt time.Time // When this process captured the record (UTC)
}

// FromFields builds a Record from a parsed field map. Call, mode and band
// fall back to NotAvailable when missing; everything else stays empty and is
// substituted at render time. WSJT-X logs both time_on and time_off; time_off
// reflects when the QSO actually completed, so it wins when both are present.
func FromFields(fields map[string]string, loggedAt time.Time) *Record {
	r := &Record{
		Call:     orNA(fields["call"]),
		Mode:     orNA(fields["mode"]),
		Band:     orNA(fields["band"]),
		Freq:     fields["freq"],
		Grid:     fields["gridsquare"],
		RSTSent:  fields["rst_sent"],
		RSTRcvd:  fields["rst_rcvd"],
		QSODate:  fields["qso_date"],
		Time:     fields["time_off"],
		Comment:  fields["comment"],
		LoggedAt: loggedAt.UTC(),
	}
	if r.Time == "" {
		r.Time = fields["time_on"]
	}
	return r
}

// OrNA substitutes the NotAvailable placeholder for an empty field value.
func OrNA(s string) string {
	return orNA(s)
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
