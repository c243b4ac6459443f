package domain

import (
	"fmt"
	"time"
)

// MarketClosed replaces the equity timestamp outside trading hours.
const MarketClosed = "Market Closed"

// MarketHours is a weekly Mon-Fri trading window in one time zone. Both ends
// of the window are inclusive.
type MarketHours struct {
	Location *time.Location
	Open     time.Duration // offset from midnight
	Close    time.Duration
}

// ParseMarketHours builds MarketHours from "HH:MM" strings and an IANA zone.
func ParseMarketHours(zone, open, close string) (MarketHours, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return MarketHours{}, fmt.Errorf("market timezone %q: %w", zone, err)
	}
	o, err := parseClock(open)
	if err != nil {
		return MarketHours{}, fmt.Errorf("market open: %w", err)
	}
	c, err := parseClock(close)
	if err != nil {
		return MarketHours{}, fmt.Errorf("market close: %w", err)
	}
	if c <= o {
		return MarketHours{}, fmt.Errorf("market close %s not after open %s", close, open)
	}
	return MarketHours{Location: loc, Open: o, Close: c}, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// IsOpen reports whether the market is trading at now. Resolution is one minute.
func (m MarketHours) IsOpen(now time.Time) bool {
	loc := m.Location
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minute := time.Duration(local.Hour())*time.Hour + time.Duration(local.Minute())*time.Minute
	return minute >= m.Open && minute <= m.Close
}
