// Package pkg holds small helpers shared across the services.
package pkg

import (
	"math"
	"strconv"
	"time"
)

var durationSteps = []struct {
	unit   time.Duration
	suffix string
}{
	{24 * time.Hour, "d"},
	{time.Hour, "h"},
	{time.Minute, "m"},
	{time.Second, "s"},
}

// SmartDurationFormat renders d for log fields. Sub-second values use a
// single unit (ms, μs or ns); longer ones keep the two largest units, so
// 26h30m becomes "1d2h" and 90s becomes "1m30s".
func SmartDurationFormat(d time.Duration) string {
	if d < 0 && d != math.MinInt64 {
		return "-" + SmartDurationFormat(-d)
	}
	switch {
	case d == 0:
		return "0"
	case d < time.Microsecond:
		return strconv.FormatInt(d.Nanoseconds(), 10) + "ns"
	case d < time.Millisecond:
		return strconv.FormatInt(d.Microseconds(), 10) + "μs"
	case d < time.Second:
		return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
	}
	for i, s := range durationSteps {
		if d < s.unit {
			continue
		}
		out := strconv.FormatInt(int64(d/s.unit), 10) + s.suffix
		if i+1 < len(durationSteps) {
			next := durationSteps[i+1]
			if rest := (d % s.unit) / next.unit; rest > 0 {
				out += strconv.FormatInt(int64(rest), 10) + next.suffix
			}
		}
		return out
	}
	return strconv.FormatInt(d.Nanoseconds(), 10) + "ns"
}
