package services

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWorkCalendarIsWorkday(t *testing.T) {
	tests := []struct {
		name    string
		country string
		day     string
		want    bool
	}{
		{"weekday none", "NONE", "2026-03-04", true},
		{"saturday none", "NONE", "2026-03-07", false},
		{"christmas none", "NONE", "2025-12-25", true},
		{"christmas us", "US", "2025-12-25", false},
		{"july 4 us", "US", "2025-07-04", false},
		{"christmas gb", "gb", "2025-12-25", false},
		{"national day cn", "CN", "2025-10-01", false},
		{"plain weekday cn", "CN", "2025-03-12", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewWorkCalendar(tt.country).IsWorkday(date(tt.day))
			if got != tt.want {
				t.Errorf("IsWorkday(%s, %s) = %v, want %v", tt.country, tt.day, got, tt.want)
			}
		})
	}
}

func TestWorkCalendarUnknownCountry(t *testing.T) {
	if c := NewWorkCalendar("ZZ").Country(); c != CountryNone {
		t.Errorf("expected fallback to %s, got %s", CountryNone, c)
	}
}

func TestWorkdays(t *testing.T) {
	tests := []struct {
		name     string
		country  string
		from, to string
		want     int
	}{
		{"one week", "NONE", "2026-03-02", "2026-03-09", 5},
		{"same day", "NONE", "2026-03-02", "2026-03-02", 0},
		{"reversed", "NONE", "2026-03-09", "2026-03-02", 0},
		{"weekend only", "NONE", "2026-03-07", "2026-03-09", 0},
		{"christmas week us", "US", "2025-12-22", "2025-12-29", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewWorkCalendar(tt.country).Workdays(date(tt.from), date(tt.to))
			if got != tt.want {
				t.Errorf("Workdays = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSupportedCountries(t *testing.T) {
	codes := SupportedCountries()
	if codes[0] != CountryNone || codes[1] != CountryChina {
		t.Errorf("unexpected leading codes: %v", codes[:2])
	}
	if len(codes) != len(countryHolidays)+2 {
		t.Errorf("expected %d codes, got %d", len(countryHolidays)+2, len(codes))
	}
}
