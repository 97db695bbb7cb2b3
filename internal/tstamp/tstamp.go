// Package tstamp parses the three timestamp forms accepted on the command
// line and in batch-file fencing: absolute UTC, signed relative seconds, and
// DNS-TTL shorthand.
package tstamp

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	absoluteDate     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	absoluteDateTime = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})[ T](\d{2}):(\d{2}):(\d{2})$`)
	ttlForm          = regexp.MustCompile(`^(\d+w)?(\d+d)?(\d+h)?(\d+m)?(\d+s)?$`)
	ttlUnit          = regexp.MustCompile(`(\d+)([wdhms])`)
)

// Now abstracts wall-clock time so relative parsing is deterministic in
// tests; it is reassigned only from test code.
var Now = time.Now

// Parse converts s, in any of the three accepted forms, to a Unix
// timestamp. An empty string parses to 0 (fence endpoint unset).
//
// Forms, tried in order:
//   - absolute: "YYYY-MM-DD" or "YYYY-MM-DD HH:MM:SS" (UTC)
//   - relative: a signed integer; negative means "N seconds before now"
//   - DNS TTL: "%dw%dd%dh%dm%ds", any subset of fields, at least one present
func Parse(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if t, ok := parseAbsolute(s); ok {
		return t, nil
	}
	if n, ok := parseRelative(s); ok {
		return n, nil
	}
	if d, ok := parseTTL(s); ok {
		return Now().Add(-d).Unix(), nil
	}
	return 0, fmt.Errorf("tstamp: %q is not a recognized timestamp", s)
}

func parseAbsolute(s string) (int64, bool) {
	if absoluteDate.MatchString(s) {
		t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
		if err != nil {
			return 0, false
		}
		return t.Unix(), true
	}
	if absoluteDateTime.MatchString(s) {
		layout := "2006-01-02 15:04:05"
		normalized := s
		if len(s) > 10 && s[10] == 'T' {
			normalized = s[:10] + " " + s[11:]
		}
		t, err := time.ParseInLocation(layout, normalized, time.UTC)
		if err != nil {
			return 0, false
		}
		return t.Unix(), true
	}
	return 0, false
}

func parseRelative(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	if n < 0 {
		return Now().Add(time.Duration(n) * time.Second).Unix(), true
	}
	return n, true
}

func parseTTL(s string) (time.Duration, bool) {
	if s == "" || !ttlForm.MatchString(s) {
		return 0, false
	}
	matches := ttlUnit.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return 0, false
	}
	var total time.Duration
	for _, m := range matches {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, false
		}
		switch m[2] {
		case "w":
			total += time.Duration(n) * 7 * 24 * time.Hour
		case "d":
			total += time.Duration(n) * 24 * time.Hour
		case "h":
			total += time.Duration(n) * time.Hour
		case "m":
			total += time.Duration(n) * time.Minute
		case "s":
			total += time.Duration(n) * time.Second
		}
	}
	return total, true
}
