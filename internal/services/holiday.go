package services

import (
	"sort"
	"strings"
	"time"

	"github.com/6tail/lunar-go/HolidayUtil"
	"github.com/6tail/lunar-go/calendar"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/it"
	"github.com/rickar/cal/v2/nl"
	"github.com/rickar/cal/v2/pl"
	"github.com/rickar/cal/v2/se"
	"github.com/rickar/cal/v2/us"
)

// CountryNone counts Monday to Friday with no public holidays.
const CountryNone = "NONE"

// CountryChina uses the lunar-go statutory table, which also knows the
// weekend days that are moved to workdays.
const CountryChina = "CN"

var countryHolidays = map[string][]*cal.Holiday{
	"US": us.Holidays,
	"GB": gb.Holidays,
	"DE": de.Holidays,
	"FR": fr.Holidays,
	"IT": it.Holidays,
	"NL": nl.Holidays,
	"PL": pl.Holidays,
	"SE": se.Holidays,
}

// WorkCalendar answers workday questions for one configured country.
type WorkCalendar struct {
	country  string
	business *cal.BusinessCalendar
}

// NewWorkCalendar falls back to CountryNone for unknown codes.
func NewWorkCalendar(country string) *WorkCalendar {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == CountryChina {
		return &WorkCalendar{country: country}
	}
	holidays, ok := countryHolidays[country]
	if !ok {
		return &WorkCalendar{country: CountryNone}
	}
	bc := cal.NewBusinessCalendar()
	bc.Name = country
	bc.AddHoliday(holidays...)
	return &WorkCalendar{country: country, business: bc}
}

func (w *WorkCalendar) Country() string { return w.country }

func (w *WorkCalendar) IsWorkday(t time.Time) bool {
	switch {
	case w.country == CountryChina:
		solar := calendar.NewSolarFromDate(t)
		if h := HolidayUtil.GetHolidayByYmd(solar.GetYear(), solar.GetMonth(), solar.GetDay()); h != nil {
			return h.IsWork()
		}
		return !cal.IsWeekend(t)
	case w.business != nil:
		return w.business.IsWorkday(t)
	default:
		return !cal.IsWeekend(t)
	}
}

// Workdays counts workdays in [from, to). It returns 0 when to is not after
// from.
func (w *WorkCalendar) Workdays(from, to time.Time) int {
	start := time.Date(from.Year(), from.Month(), from.Day(), 12, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 12, 0, 0, 0, time.UTC)
	n := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if w.IsWorkday(d) {
			n++
		}
	}
	return n
}

// SupportedCountries lists the accepted calendar.country values.
func SupportedCountries() []string {
	codes := []string{CountryNone, CountryChina}
	for code := range countryHolidays {
		codes = append(codes, code)
	}
	sort.Strings(codes[2:])
	return codes
}
