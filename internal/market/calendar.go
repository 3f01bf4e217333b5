// Package market implements the NSE trading-calendar gate.
//
// Eligibility is a pure function of the instant: weekday, not a listed
// holiday, and inside the cash-market window [09:15:00, 15:30:00] IST. All
// checks run in IST regardless of the host zone.
package market

import (
	"strconv"
	"time"
)

// IST is the fixed NSE trading zone (UTC+5:30). A fixed zone avoids any
// dependency on the host's zoneinfo database.
var IST = time.FixedZone("IST", 5*3600+30*60)

// Trading window bounds, seconds since midnight IST, both inclusive.
const (
	openSecond  = 9*3600 + 15*60  // 09:15:00
	closeSecond = 15*3600 + 30*60 // 15:30:00
)

// holidays lists NSE holidays as "day-month" pairs (2024 list). The list has
// no year component, so moving holidays block the same calendar date every
// year whether or not the holiday falls there. Known limitation carried over
// from the deployed collector; needs a yearly refresh.
var holidays = map[string]bool{
	"1-1":   true, // New Year's Day
	"26-1":  true, // Republic Day
	"8-3":   true, // Maha Shivaratri
	"25-3":  true, // Holi
	"29-3":  true, // Good Friday
	"11-4":  true, // Id-Ul-Fitr
	"17-4":  true, // Ram Navami
	"1-5":   true, // Maharashtra Day
	"17-6":  true, // Bakri Id
	"15-8":  true, // Independence Day
	"2-10":  true, // Mahatma Gandhi Jayanti
	"31-10": true, // Diwali-Laxmi Pujan
	"1-11":  true, // Diwali-Balipratipada
	"25-12": true, // Christmas
}

// IsTradingDay reports whether t falls on an NSE trading day in IST:
// a weekday that is not on the holiday list.
func IsTradingDay(t time.Time) bool {
	t = t.In(IST)
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !holidays[dayMonth(t)]
}

// WithinTradingHours reports whether t's IST time of day is inside the
// cash-market window, endpoints included.
func WithinTradingHours(t time.Time) bool {
	t = t.In(IST)
	sod := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return sod >= openSecond && sod <= closeSecond
}

// IsEligible reports whether t is a moment worth polling: a trading day and
// inside trading hours.
func IsEligible(t time.Time) bool {
	return IsTradingDay(t) && WithinTradingHours(t)
}

// dayMonth formats t as the holiday-list key, e.g. "26-1" for January 26.
func dayMonth(t time.Time) string {
	return strconv.Itoa(t.Day()) + "-" + strconv.Itoa(int(t.Month()))
}
