package analytics

import "time"

// Timeframe tokens accepted on the analytics endpoints. An unknown or
// empty token silently falls back to the twelve month window.
const (
	TimeframeOneMonth     = "1month"
	TimeframeThreeMonths  = "3months"
	TimeframeSixMonths    = "6months"
	TimeframeTwelveMonths = "12months"
)

var timeframeMonths = map[string]int{
	TimeframeOneMonth:     1,
	TimeframeThreeMonths:  3,
	TimeframeSixMonths:    6,
	TimeframeTwelveMonths: 12,
}

// ResolveTimeframe returns the normalised token and the window's lower
// bound. There is no upper bound; the window always ends at now.
func ResolveTimeframe(token string, now time.Time) (string, time.Time) {
	months, ok := timeframeMonths[token]
	if !ok {
		token = TimeframeTwelveMonths
		months = 12
	}
	return token, now.AddDate(0, -months, 0)
}
