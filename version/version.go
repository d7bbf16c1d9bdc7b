// Package version reduces host release strings to comparable integers and
// resolves ordered breakpoint tables against them.
//
// A release such as "1.20.4-R0.1-SNAPSHOT" is encoded as
// major*1000 + minor*10 + patch, so 1.20.4 becomes 1204 and 1.8 becomes 1080.
// Minor versions of 100 and above, or patch versions of 10 and above, overflow
// into the neighbouring digit. Host releases have never used either, so this
// is accepted rather than guarded against.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError is returned when a release string is not of the form
// major.minor[.patch].
type ParseError struct {
	// Input is the full string that was passed to Encode.
	Input string
	// Segment is the offending dot-separated segment, if any.
	Segment string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("version: parse %q: segment %q: %v", e.Input, e.Segment, e.Err)
	}
	return fmt.Sprintf("version: parse %q: %v", e.Input, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Encode parses a release string into its canonical integer. Anything after the
// first '-' is ignored. The patch segment is optional and defaults to zero.
func Encode(s string) (int, error) {
	core, _, _ := strings.Cut(strings.TrimSpace(s), "-")
	parts := strings.Split(core, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, &ParseError{Input: s, Err: fmt.Errorf("want major.minor[.patch], got %d segments", len(parts))}
	}

	var n [3]int
	for i, part := range parts {
		v, err := segment(part)
		if err != nil {
			return 0, &ParseError{Input: s, Segment: part, Err: err}
		}
		n[i] = v
	}
	return n[0]*1000 + n[1]*10 + n[2], nil
}

// segment parses a single unsigned decimal segment. strconv.Atoi alone would
// accept a leading '+'.
func segment(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty segment")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("unexpected character %q", r)
		}
	}
	return strconv.Atoi(s)
}

// MustEncode is like Encode but panics on malformed input. It is intended for
// literal release strings in breakpoint tables.
func MustEncode(s string) int {
	v, err := Encode(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Format renders a canonical integer back to a release string. A zero patch is
// omitted, so Format(1080) is "1.8".
func Format(v int) string {
	major, minor, patch := v/1000, (v%1000)/10, v%10
	if patch == 0 {
		return fmt.Sprintf("%d.%d", major, minor)
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}
