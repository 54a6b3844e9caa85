package period

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveMonthMidMarch(t *testing.T) {
	today := date(2024, time.March, 15)

	r := Resolve("month", today)
	if r.FromString() != "2024-03-01" || r.ToString() != "2024-03-15" {
		t.Fatalf("month: got [%s, %s]", r.FromString(), r.ToString())
	}

	// Previous window has the same length (15 days) and ends the day
	// before; Feb 2024 is a leap year.
	prev := Previous(r)
	if prev.FromString() != "2024-02-15" || prev.ToString() != "2024-02-29" {
		t.Fatalf("previous month window: got [%s, %s]", prev.FromString(), prev.ToString())
	}
	if prev.Days() != r.Days() {
		t.Fatalf("previous length %d != current length %d", prev.Days(), r.Days())
	}
	if r.Days() != 15 {
		t.Fatalf("expected 15 days, got %d", r.Days())
	}
}

func TestResolveAllNames(t *testing.T) {
	today := date(2024, time.March, 15) // a Friday

	cases := map[string]struct{ from, to string }{
		"today":      {"2024-03-15", "2024-03-15"},
		"yesterday":  {"2024-03-14", "2024-03-14"},
		"week":       {"2024-03-11", "2024-03-15"}, // Monday start
		"month":      {"2024-03-01", "2024-03-15"},
		"last_month": {"2024-02-01", "2024-02-29"},
		"quarter":    {"2024-01-01", "2024-03-15"},
		"year":       {"2024-01-01", "2024-03-15"},
	}

	for name, want := range cases {
		r := Resolve(name, today)
		if r.FromString() != want.from || r.ToString() != want.to {
			t.Fatalf("%s: got [%s, %s], want [%s, %s]",
				name, r.FromString(), r.ToString(), want.from, want.to)
		}
		if r.From.After(r.To) {
			t.Fatalf("%s: from after to", name)
		}
	}
}

func TestResolveUnrecognizedFallsBackToToday(t *testing.T) {
	today := date(2024, time.March, 15)

	got := Resolve("fortnight", today)
	want := Resolve("today", today)
	if got != want {
		t.Fatalf("fortnight resolved to [%s, %s], want today's range", got.FromString(), got.ToString())
	}
}

func TestPreviousAlwaysSameLength(t *testing.T) {
	today := date(2024, time.March, 15)

	for _, name := range []string{"today", "yesterday", "week", "month", "last_month", "quarter", "year"} {
		r := Resolve(name, today)
		prev := Previous(r)

		if prev.Days() != r.Days() {
			t.Fatalf("%s: previous length %d != %d", name, prev.Days(), r.Days())
		}
		if want := r.From.AddDate(0, 0, -1); !prev.To.Equal(want) {
			t.Fatalf("%s: previous.To = %s, want %s", name, prev.ToString(), want.Format(DateLayout))
		}
	}
}

func TestResolveWeekOnMonday(t *testing.T) {
	// A Monday resolves to a single-day week.
	r := Resolve("week", date(2024, time.March, 11))
	if r.FromString() != "2024-03-11" || r.ToString() != "2024-03-11" {
		t.Fatalf("week on Monday: got [%s, %s]", r.FromString(), r.ToString())
	}
}

func TestExplicitRange(t *testing.T) {
	r, err := Explicit("2024-01-10", "2024-01-20", time.UTC)
	if err != nil {
		t.Fatalf("explicit range: %v", err)
	}
	if r.FromString() != "2024-01-10" || r.ToString() != "2024-01-20" {
		t.Fatalf("explicit: got [%s, %s]", r.FromString(), r.ToString())
	}
	if r.Days() != 11 {
		t.Fatalf("expected 11 days, got %d", r.Days())
	}

	if _, err := Explicit("garbage", "2024-01-20", time.UTC); err == nil {
		t.Fatalf("expected error for malformed from date")
	}
}
