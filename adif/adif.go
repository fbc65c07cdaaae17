// Package adif decodes the tagged-length field format that WSJT-X broadcasts
// when a QSO is logged. Each field is written as <name:length> followed by at
// most length bytes of value, with no delimiter between fields.
//
// The parser is deliberately forgiving: field names match case-insensitively,
// a declared length longer than the remaining text truncates to what is
// available, and malformed input yields an empty map rather than an error.
// Datagrams arrive from the network, so nothing here may panic.
package adif

import (
	"regexp"
	"strconv"
	"strings"
)

// fieldPattern matches one tagged-length field: name, declared byte length,
// then everything up to the next tag. Values never contain '<' in ADIF, so
// the negated class doubles as the field terminator.
var fieldPattern = regexp.MustCompile(`(?i)<(\w+):(\d+)>\s*([^<]*)`)

// tagPattern is the cheap structural filter applied before full parsing.
var tagPattern = regexp.MustCompile(`<\w+:\d+>`)

// Parse extracts every tagged-length field from text into a map keyed by the
// lower-cased field name. Values are whitespace-trimmed and truncated to the
// declared length. Unmatchable content is skipped; Parse never fails.
func Parse(text string) map[string]string {
	fields := make(map[string]string)
	for _, m := range fieldPattern.FindAllStringSubmatch(text, -1) {
		name := strings.ToLower(m[1])
		length, err := strconv.Atoi(m[2])
		if err != nil || length < 0 {
			continue
		}
		value := strings.TrimSpace(m[3])
		if len(value) > length {
			value = value[:length]
		}
		fields[name] = value
	}
	return fields
}

// Lookup extracts a single named field from text. The second return value
// reports whether the field was present.
func Lookup(text, field string) (string, bool) {
	re, err := regexp.Compile(`(?i)<` + regexp.QuoteMeta(field) + `:(\d+)>\s*([^<]*)`)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	length, err := strconv.Atoi(m[1])
	if err != nil || length < 0 {
		return "", false
	}
	value := strings.TrimSpace(m[2])
	if len(value) > length {
		value = value[:length]
	}
	return value, true
}

// Plausible reports whether text contains at least one complete tagged-length
// field. The listener uses this to discard noise datagrams before paying for a
// full parse. Content that merely resembles the grammar ("<oops>", stray
// angle brackets) is rejected.
func Plausible(text string) bool {
	if strings.Contains(strings.ToLower(text), "<call:") {
		return true
	}
	return tagPattern.MatchString(text)
}
