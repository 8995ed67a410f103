package usecase

import (
	"fmt"
	"time"
)

const (
	// MaxInstruments is the upper bound on instruments returned by one cycle.
	MaxInstruments = 50
	// HorizonDays is the forecast horizon.
	HorizonDays = 7
	// PromptTimestampLayout formats the request time sent to the model.
	PromptTimestampLayout = "Jan 2, 03:04 PM MST"
)

// forecastPromptTemplate takes the timestamp, the instrument count and the horizon (twice).
const forecastPromptTemplate = `Today's Date/Time: %[1]s.

TASK: Identify up to %[2]d stocks (S&P 500, Nasdaq, and high-growth tickers) with significant gain potential over the next %[3]d days.

SEARCH REQUIREMENT:
Use Google Search to find the ACTUAL current market prices. Do not rely on memorized prices; they are outdated.
Verify current prices for all major AI and tech tickers (NVDA, TSLA, PLTR, MSFT, etc.).

For each stock, return:
- symbol: Ticker (e.g., "PLTR")
- name: Company Name
- currentPrice: The real-time price found via search (Number)
- currentPriceDate: String timestamp of the quote
- targetPrice: Predicted %[3]d-day target (Number)
- targetPriceDate: Date %[3]d days from now
- reason: One clear bullish catalyst, one sentence
- sector: Industry sector

OUTPUT: Return ONLY a valid JSON array of at most %[2]d objects. No prose, no markdown, no code fences.
Example: [{"symbol":"PLTR","name":"Palantir Technologies","currentPrice":147.17,"currentPriceDate":"Feb 24, 2025","targetPrice":165.00,"targetPriceDate":"Mar 03, 2025","reason":"AIP platform acceleration.","sector":"Software"}]`

// BuildPrompt composes the forecast request for the given request timestamp label.
func BuildPrompt(timestamp string) string {
	return fmt.Sprintf(forecastPromptTemplate, timestamp, MaxInstruments, HorizonDays)
}

// FormatTimestamp renders t in loc with PromptTimestampLayout.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(PromptTimestampLayout)
}
