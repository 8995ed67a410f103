// Package entity defines the domain models for the forecast feature.
package entity

// Instrument is one forecasted stock as shown on the dashboard.
// Prices are what the model reported, not live quotes.
type Instrument struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	CurrentPrice     float64 `json:"currentPrice"`
	CurrentPriceDate string  `json:"currentPriceDate"`
	TargetPrice      float64 `json:"targetPrice"`
	TargetPriceDate  string  `json:"targetPriceDate"`
	GainPercentage   float64 `json:"gainPercentage"`
	Reason           string  `json:"reason"`
	Sector           string  `json:"sector"`
}

// GainPercentage returns the expected 7-day move in percent.
// It is 0 when current is not positive.
func GainPercentage(current, target float64) float64 {
	if current <= 0 {
		return 0
	}
	return (target - current) / current * 100
}
