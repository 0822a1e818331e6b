package common

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"$300", "300", true},
		{"$3.00", "3", true},
		{" $1,000 ", "1000", true},
		{"50.00", "50", true},
		{"$0", "", false},
		{"-$5", "", false},
		{"garbage", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		if c.ok {
			if err != nil {
				t.Errorf("ParseAmount(%q): %v", c.in, err)
				continue
			}
			if got.String() != c.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", c.in, got, c.want)
			}
		} else if !errors.Is(err, ErrInvalidReturnAmount) {
			t.Errorf("ParseAmount(%q) err = %v, want ErrInvalidReturnAmount", c.in, err)
		}
	}
}

func TestPercentRoundsToCents(t *testing.T) {
	got := Percent(mustDec(t, "3.00"), 20)
	if got.String() != "0.6" {
		t.Errorf("20%% of 3.00 = %s, want 0.6", got)
	}
	got = Percent(mustDec(t, "200"), 3)
	if got.String() != "6" {
		t.Errorf("3%% of 200 = %s, want 6", got)
	}
	got = Percent(mustDec(t, "33.33"), 7)
	if got.String() != "2.33" {
		t.Errorf("7%% of 33.33 = %s, want 2.33", got)
	}
}

func TestDayStart(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Karachi")
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2026, 3, 6, 23, 45, 0, 0, loc)
	start := DayStart(at)
	if start.Hour() != 0 || start.Minute() != 0 || start.Day() != 6 {
		t.Errorf("DayStart = %v, want midnight of the 6th", start)
	}
	if start.Location() != loc {
		t.Error("DayStart must keep the input location")
	}
}

func TestDaysSinceCountsWholeDays(t *testing.T) {
	base := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)
	if got := DaysSince(base, base.AddDate(0, 0, 14)); got != 14 {
		t.Errorf("14 days later = %d, want 14", got)
	}
	if got := DaysSince(base, base.Add(13*24*time.Hour+23*time.Hour)); got != 13 {
		t.Errorf("13d23h later = %d, want 13", got)
	}
	if got := DaysSince(base, base); got != 0 {
		t.Errorf("same instant = %d, want 0", got)
	}
}

func TestNextWeekday(t *testing.T) {
	thursday := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	next := NextWeekday(thursday, time.Friday)
	if next.Weekday() != time.Friday || next.Day() != 6 {
		t.Errorf("next Friday after Thursday = %v, want 2026-03-06", next)
	}

	friday := time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC)
	next = NextWeekday(friday, time.Friday)
	if next.Day() != 13 {
		t.Errorf("next Friday after a Friday = %v, want one week later", next)
	}
}

func TestAdvanceToWeekday(t *testing.T) {
	friday := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if got := AdvanceToWeekday(friday, time.Friday); !got.Equal(friday) {
		t.Errorf("a Friday must stay put, got %v", got)
	}
	saturday := friday.AddDate(0, 0, 1)
	if got := AdvanceToWeekday(saturday, time.Friday); got.Day() != 13 {
		t.Errorf("Saturday advanced to %v, want next Friday the 13th", got)
	}
}
