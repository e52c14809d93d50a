package engine

import (
	"testing"
	"time"
)

func d(year int, month time.Month, day int) Date { return NewDate(year, month, day) }

func TestDaysBetween_Inclusive(t *testing.T) {
	tests := []struct {
		name string
		from Date
		to   Date
		want int
	}{
		{"same day counts once", d(2025, time.March, 10), d(2025, time.March, 10), 1},
		{"adjacent days", d(2025, time.March, 10), d(2025, time.March, 11), 2},
		{"full july-december leap year", d(2024, time.July, 1), d(2024, time.December, 31), 184},
		{"full leap year", d(2024, time.January, 1), d(2024, time.December, 31), 366},
		{"full common year", d(2023, time.January, 1), d(2023, time.December, 31), 365},
		{"inverted range never negative", d(2025, time.March, 11), d(2025, time.March, 10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetween(tt.from, tt.to); got != tt.want {
				t.Errorf("DaysBetween(%s, %s) = %d, want %d", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDaysBetweenExclusive(t *testing.T) {
	tests := []struct {
		name string
		from Date
		to   Date
		want int
	}{
		{"same day counts zero", d(2025, time.March, 10), d(2025, time.March, 10), 0},
		{"adjacent days", d(2025, time.March, 10), d(2025, time.March, 11), 1},
		{"pause june through september", d(2024, time.June, 1), d(2024, time.September, 1), 92},
		{"inverted range never negative", d(2025, time.March, 11), d(2025, time.March, 10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysBetweenExclusive(tt.from, tt.to); got != tt.want {
				t.Errorf("DaysBetweenExclusive(%s, %s) = %d, want %d", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestLeapYears(t *testing.T) {
	cases := map[int]int{
		2023: 365,
		2024: 366,
		2000: 366, // divisible by 400
		1900: 365, // divisible by 100 but not 400
		2025: 365,
	}
	for year, want := range cases {
		if got := DaysInYear(year); got != want {
			t.Errorf("DaysInYear(%d) = %d, want %d", year, got, want)
		}
	}
}

func TestYearBounds(t *testing.T) {
	if got := StartOfYear(2025); !got.Equal(d(2025, time.January, 1)) {
		t.Errorf("StartOfYear(2025) = %s", got)
	}
	if got := EndOfYear(2025); !got.Equal(d(2025, time.December, 31)) {
		t.Errorf("EndOfYear(2025) = %s", got)
	}
}

func TestInRange(t *testing.T) {
	from, to := d(2025, time.March, 1), d(2025, time.March, 31)
	if !InRange(d(2025, time.March, 1), from, to) || !InRange(d(2025, time.March, 31), from, to) {
		t.Error("endpoints should be in range")
	}
	if InRange(d(2025, time.April, 1), from, to) {
		t.Error("april 1 should be out of range")
	}
}

func TestMinMaxDate(t *testing.T) {
	a, b := d(2025, time.January, 5), d(2025, time.February, 5)
	if !MinDate(a, b).Equal(a) || !MinDate(b, a).Equal(a) {
		t.Error("MinDate should pick the earlier date")
	}
	if !MaxDate(a, b).Equal(b) || !MaxDate(b, a).Equal(b) {
		t.Error("MaxDate should pick the later date")
	}
}

func TestDateOf_StripsTimeOfDay(t *testing.T) {
	late := time.Date(2025, time.June, 15, 23, 59, 58, 0, time.UTC)
	early := time.Date(2025, time.June, 15, 0, 0, 1, 0, time.UTC)
	if !DateOf(late).Equal(DateOf(early)) {
		t.Error("same calendar day should compare equal regardless of time of day")
	}
}
