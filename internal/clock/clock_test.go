package clock

import (
	"testing"
	"time"
)

func TestToday(t *testing.T) {
	c := FixedClock{T: time.Date(2026, 3, 15, 23, 59, 59, 0, time.UTC)}

	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := Today(c); !got.Equal(want) {
		t.Errorf("Today() = %v, want %v", got, want)
	}
}

func TestToday_NonUTC(t *testing.T) {
	// 20:00 in UTC-8 is already the next day in UTC
	c := FixedClock{T: time.Date(2026, 3, 10, 20, 0, 0, 0, time.FixedZone("PST", -8*60*60))}

	want := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	if got := Today(c); !got.Equal(want) {
		t.Errorf("Today() = %v, want %v", got, want)
	}
}

func TestRealClock_UTC(t *testing.T) {
	if loc := (RealClock{}).Now().Location(); loc != time.UTC {
		t.Errorf("RealClock location = %v, want UTC", loc)
	}
}

func TestEndOfMonth(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"31-day month", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)},
		{"february", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"leap february", time.Date(2028, 2, 10, 0, 0, 0, 0, time.UTC), time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"december", time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EndOfMonth(tt.in); !got.Equal(tt.want) {
				t.Errorf("EndOfMonth(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
