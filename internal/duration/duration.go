package duration

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Unit is the numeric unit a duration is converted to.
type Unit string

const (
	Millisecond Unit = "ms"
	Second      Unit = "s"
)

const (
	msPerSecond = 1000
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
)

var componentPattern = regexp.MustCompile(`(\d+)([a-zA-Z]+)`)

// Value holds the buckets of a compound duration string. Buckets are
// filled independently, "90m" stays Minutes=90.
type Value struct {
	Hours        int64
	Minutes      int64
	Seconds      int64
	Milliseconds int64
}

// Parse reads strings such as "1h1m1s100ms". Unit letters are case
// insensitive, a repeated unit overwrites the earlier one and unknown
// units are skipped. Input without any component yields the zero Value.
func Parse(input string) Value {
	var v Value

	rest := input
	for {
		loc := componentPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			return v
		}

		digits := rest[loc[2]:loc[3]]
		unit := strings.ToLower(rest[loc[4]:loc[5]])

		// loc[1] > loc[0]: every match is non-empty, so rest shrinks.
		rest = rest[:loc[0]] + rest[loc[1]:]

		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}

		switch unit {
		case "h":
			v.Hours = n
		case "m":
			v.Minutes = n
		case "s":
			v.Seconds = n
		case "ms":
			v.Milliseconds = n
		}
	}
}

// TotalMilliseconds returns the total duration in milliseconds, saturating
// at math.MaxInt64.
func (v Value) TotalMilliseconds() int64 {
	var total int64
	for _, part := range []struct {
		n, size int64
	}{
		{v.Hours, msPerHour},
		{v.Minutes, msPerMinute},
		{v.Seconds, msPerSecond},
		{v.Milliseconds, 1},
	} {
		if part.n > (math.MaxInt64-total)/part.size {
			return math.MaxInt64
		}
		total += part.n * part.size
	}
	return total
}

// ToUnit converts the total duration to u. Anything other than Second is
// reported in milliseconds.
func (v Value) ToUnit(u Unit) float64 {
	total := float64(v.Hours)*msPerHour + float64(v.Minutes)*msPerMinute +
		float64(v.Seconds)*msPerSecond + float64(v.Milliseconds)
	if u == Second {
		return total / msPerSecond
	}
	return total
}

// Duration converts v for timers, capped at the largest time.Duration.
func (v Value) Duration() time.Duration {
	ms := v.TotalMilliseconds()
	if ms > int64(math.MaxInt64/time.Millisecond) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

// IsZero reports whether every bucket is empty.
func (v Value) IsZero() bool {
	return v == Value{}
}

// DeriveTime parses input and converts it to u in one step.
func DeriveTime(input string, u Unit) float64 {
	return Parse(input).ToUnit(u)
}

// Format renders ms as a compound string, carrying between units:
// 3661100 becomes "1h1m1s100ms". Zero and negative input give "0ms".
func Format(ms int64) string {
	if ms <= 0 {
		return "0" + string(Millisecond)
	}

	var b strings.Builder
	for _, part := range []struct {
		size int64
		unit string
	}{
		{msPerHour, "h"},
		{msPerMinute, "m"},
		{msPerSecond, "s"},
		{1, "ms"},
	} {
		if n := ms / part.size; n > 0 {
			b.WriteString(strconv.FormatInt(n, 10))
			b.WriteString(part.unit)
			ms -= n * part.size
		}
	}
	return b.String()
}

// FormatUnit writes n followed by its unit, the form expected by string
// typed duration fields.
func FormatUnit(n int64, u Unit) string {
	return strconv.FormatInt(n, 10) + string(u)
}
