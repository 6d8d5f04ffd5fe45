// Package versioning generates, parses, orders and retires profile version identifiers.
//
// A version is "v" followed by a wall-clock timestamp at minute granularity
// (v{YYYYMMDDHHMM}), so identifiers sort both lexicographically and chronologically.
package versioning

import (
	"sort"
	"strings"
	"time"
)

// Prefix is prepended to every generated version.
const Prefix = "v"

// layout is the Go reference-time layout for YYYYMMDDHHMM
const layout = "200601021504"

// Generate returns the version identifier for t.
func Generate(t time.Time) string {
	return Prefix + t.Format(layout)
}

// Now returns the version identifier for the current wall-clock minute.
func Now() string {
	return Generate(time.Now())
}

// Parse extracts the timestamp encoded in a version string.
// The second return value is false when the string is not a well-formed version.
func Parse(version string) (time.Time, bool) {
	clean := strings.TrimLeft(strings.TrimSpace(version), Prefix)
	if len(clean) != len(layout) || !allDigits(clean) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(layout, clean, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsValid reports whether version parses.
func IsValid(version string) bool {
	_, ok := Parse(version)
	return ok
}

// Compare returns -1, 0 or 1 ordering a before, equal to, or after b.
// Parseable versions compare by timestamp. An unparseable version orders before any
// parseable one, and two unparseable versions fall back to raw string ordering.
func Compare(a, b string) int {
	ta, okA := Parse(a)
	tb, okB := Parse(b)

	switch {
	case okA && okB:
		switch {
		case ta.Before(tb):
			return -1
		case ta.After(tb):
			return 1
		}
		return 0
	case !okA && okB:
		return -1
	case okA && !okB:
		return 1
	}
	return strings.Compare(a, b)
}

// Sort returns a sorted copy of versions (ascending, or newest first when descending is true).
// Unparseable versions count as the earliest; ties keep their input order.
func Sort(versions []string, descending bool) []string {
	type entry struct {
		version string
		at      time.Time
	}
	entries := make([]entry, len(versions))
	for i, v := range versions {
		at, _ := Parse(v) // zero time for unparseable
		entries[i] = entry{version: v, at: at}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if descending {
			return entries[i].at.After(entries[j].at)
		}
		return entries[i].at.Before(entries[j].at)
	})

	sorted := make([]string, len(entries))
	for i, e := range entries {
		sorted[i] = e.version
	}
	return sorted
}

// Latest returns the most recent version, or "" for an empty list.
func Latest(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	return Sort(versions, true)[0]
}

// Next returns a version strictly newer than every parseable version in existing,
// using the current wall clock when it is already ahead.
func Next(existing []string) string {
	return NextAt(existing, time.Now())
}

// NextAt is Next with an explicit clock reading.
// When now falls in the same minute as (or before) the latest existing version,
// the result is one minute after that version instead of reusing the clock.
func NextAt(existing []string, now time.Time) string {
	candidate := now.Truncate(time.Minute)

	latest, ok := Parse(Latest(existing))
	if ok && !candidate.After(latest) {
		return Generate(latest.Add(time.Minute))
	}
	return Generate(candidate)
}

// Info is a broken-down view of a version identifier.
type Info struct {
	Version   string `json:"version"`
	Valid     bool   `json:"is_valid"`
	Timestamp string `json:"timestamp,omitempty"` // RFC3339
	Date      string `json:"date,omitempty"`      // 2006-01-02
	Time      string `json:"time,omitempty"`      // 15:04
}

// Describe returns the broken-down Info for version.
func Describe(version string) Info {
	t, ok := Parse(version)
	if !ok {
		return Info{Version: version}
	}
	return Info{
		Version:   version,
		Valid:     true,
		Timestamp: t.Format(time.RFC3339),
		Date:      t.Format("2006-01-02"),
		Time:      t.Format("15:04"),
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
