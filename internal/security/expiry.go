package security

import (
	"regexp"
	"strconv"
	"time"
)

var expiryPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseExpiry parses a lifetime string of the form N followed by one of
// s, m, h, d (e.g. "60m", "30d"). Unparsable input returns fallback rather
// than an error; a bad value in the environment must not take down the
// token flows.
func ParseExpiry(s string, fallback time.Duration) time.Duration {
	m := expiryPattern.FindStringSubmatch(s)
	if m == nil {
		return fallback
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return fallback
	}
	switch m[2] {
	case "s":
		return time.Duration(n) * time.Second
	case "m":
		return time.Duration(n) * time.Minute
	case "h":
		return time.Duration(n) * time.Hour
	case "d":
		return time.Duration(n) * 24 * time.Hour
	}
	return fallback
}
