// Package period turns symbolic period names ("today", "month", …) into
// concrete inclusive date ranges relative to the current date, and derives
// the equivalent prior period for comparison KPIs.
package period

import (
	"time"
)

// DateLayout is the wire format for range bounds in cache keys and payloads.
const DateLayout = "2006-01-02"

// Range is an inclusive [From, To] date range. Both bounds are truncated to
// midnight; only the date part is meaningful.
type Range struct {
	From time.Time
	To   time.Time
}

// FromString and ToString format the bounds for cache keys and JSON payloads.
func (r Range) FromString() string { return r.From.Format(DateLayout) }
func (r Range) ToString() string   { return r.To.Format(DateLayout) }

// Days returns the inclusive length of the range in days. Both bounds are
// normalized to UTC dates first so DST transitions cannot skew the count.
func (r Range) Days() int {
	from := asUTCDate(r.From)
	to := asUTCDate(r.To)
	return int(to.Sub(from).Hours()/24) + 1
}

// Resolve maps a symbolic period name to a concrete range relative to today.
// Unrecognized names silently fall back to today's range; callers that want
// an explicit range skip Resolve entirely and pass their dates verbatim.
func Resolve(name string, today time.Time) Range {
	today = truncate(today)

	switch name {
	case "yesterday":
		y := today.AddDate(0, 0, -1)
		return Range{From: y, To: y}
	case "week":
		// Start of current week (Monday)
		offset := (int(today.Weekday()) + 6) % 7
		return Range{From: today.AddDate(0, 0, -offset), To: today}
	case "month":
		return Range{From: firstOfMonth(today), To: today}
	case "last_month":
		lastMonthEnd := firstOfMonth(today).AddDate(0, 0, -1)
		return Range{From: firstOfMonth(lastMonthEnd), To: lastMonthEnd}
	case "quarter":
		quarterMonth := ((int(today.Month())-1)/3)*3 + 1
		from := time.Date(today.Year(), time.Month(quarterMonth), 1, 0, 0, 0, 0, today.Location())
		return Range{From: from, To: today}
	case "year":
		from := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
		return Range{From: from, To: today}
	default:
		// includes "today" and anything unrecognized
		return Range{From: today, To: today}
	}
}

// Previous returns the same-length window immediately preceding r:
// prev.To = r.From - 1 day, prev.From = prev.To - (len - 1) days. The result
// always has exactly as many days as r no matter which name produced it.
func Previous(r Range) Range {
	days := r.Days()
	prevTo := r.From.AddDate(0, 0, -1)
	prevFrom := prevTo.AddDate(0, 0, -(days - 1))
	return Range{From: prevFrom, To: prevTo}
}

// Explicit builds a range from caller-supplied date strings, bypassing
// symbolic resolution.
func Explicit(from, to string, loc *time.Location) (Range, error) {
	f, err := time.ParseInLocation(DateLayout, from, loc)
	if err != nil {
		return Range{}, err
	}
	t, err := time.ParseInLocation(DateLayout, to, loc)
	if err != nil {
		return Range{}, err
	}
	return Range{From: f, To: t}, nil
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func asUTCDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
