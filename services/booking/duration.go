package booking

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// maxDuration bounds what a typed duration may ask for.
const maxDuration = 7 * 24 * time.Hour

var durationPattern = regexp.MustCompile(`^(\d+)\s*(hours?|hrs?|minutes?|mins?)$`)

// ParseDuration recognizes "<n> hour(s)", "<n> hr(s)", "<n> min(s)" and
// "<n> minute(s)". Anything else, including zero or more than a week, is
// reported as not parsed.
func ParseDuration(raw string) (time.Duration, bool) {
	m := durationPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(raw)))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	unit := time.Minute
	if strings.HasPrefix(m[2], "h") {
		unit = time.Hour
	}
	if int64(n) > int64(maxDuration/unit) {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

// FormatDuration renders a duration the way users type it.
func FormatDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return strconv.Itoa(h) + " hours"
	}
	m := int(d / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return strconv.Itoa(m) + " minutes"
}
