package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const day = 24 * time.Hour

// Units accepted by ParseTTL in addition to Go duration syntax. Months and
// years are the average Gregorian lengths.
var ttlUnits = map[string]time.Duration{
	"ns": time.Nanosecond, "nsec": time.Nanosecond,
	"us": time.Microsecond, "usec": time.Microsecond,
	"ms": time.Millisecond, "msec": time.Millisecond,
	"s": time.Second, "sec": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": day, "day": day, "days": day,
	"w": 7 * day, "week": 7 * day, "weeks": 7 * day,
	"M": 2630016 * time.Second, "month": 2630016 * time.Second, "months": 2630016 * time.Second,
	"y": 31557600 * time.Second, "year": 31557600 * time.Second, "years": 31557600 * time.Second,
}

// ParseTTL parses a certificate lifetime. It accepts Go durations ("8760h",
// "90m") and sequences of integer/unit pairs such as "1y", "90d", "2w 3d"
// or "1year 6months". The result must be positive.
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("ttl is empty")
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		d, err = parseUnitDuration(s)
		if err != nil {
			return 0, fmt.Errorf("invalid ttl %q: %w", s, err)
		}
	}

	if d <= 0 {
		return 0, fmt.Errorf("ttl must be positive, got %q", s)
	}
	return d, nil
}

func parseUnitDuration(s string) (time.Duration, error) {
	var total time.Duration
	rest := s

	for {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}

		i := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
		if i == 0 {
			return 0, fmt.Errorf("expected a number at %q", rest)
		}
		if i < 0 {
			return 0, fmt.Errorf("missing unit after %q", rest)
		}
		n, err := strconv.ParseInt(rest[:i], 10, 64)
		if err != nil {
			return 0, err
		}
		rest = rest[i:]

		j := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) })
		if j < 0 {
			j = len(rest)
		}
		unitName := rest[:j]
		rest = rest[j:]

		unit, ok := ttlUnits[unitName]
		if !ok {
			// "M" is months; lower-case unit names are matched case-insensitively
			unit, ok = ttlUnits[strings.ToLower(unitName)]
		}
		if !ok {
			return 0, fmt.Errorf("unknown unit %q", unitName)
		}

		if n > int64(math.MaxInt64/unit) {
			return 0, fmt.Errorf("duration overflows")
		}
		part := time.Duration(n) * unit
		if total > math.MaxInt64-part {
			return 0, fmt.Errorf("duration overflows")
		}
		total += part
	}

	return total, nil
}
