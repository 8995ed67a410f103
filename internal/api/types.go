// Package api defines the JSON request and response bodies of the HTTP API.
package api

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CardResponse is one rendered instrument card.
type CardResponse struct {
	Rank             int     `json:"rank"`
	RankLabel        string  `json:"rankLabel"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Sector           string  `json:"sector"`
	CurrentPrice     float64 `json:"currentPrice"`
	CurrentPriceText string  `json:"currentPriceText"`
	CurrentPriceDate string  `json:"currentPriceDate"`
	TargetPrice      float64 `json:"targetPrice"`
	TargetPriceText  string  `json:"targetPriceText"`
	TargetPriceDate  string  `json:"targetPriceDate"`
	GainPercentage   float64 `json:"gainPercentage"`
	GainLabel        string  `json:"gainLabel"`
	Positive         bool    `json:"positive"`
	Reason           string  `json:"reason"`
}

// SourceResponse is one grounding source.
type SourceResponse struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ForecastResponse is the dashboard view state with the visible cards.
type ForecastResponse struct {
	Mode        string           `json:"mode"`
	Loading     bool             `json:"loading"`
	Error       string           `json:"error,omitempty"`
	LastUpdated string           `json:"lastUpdated,omitempty"`
	Query       string           `json:"query,omitempty"`
	Total       int              `json:"total"`
	Cards       []CardResponse   `json:"cards"`
	Sources     []SourceResponse `json:"sources"`
}

// ReadinessResponse is the body of GET /readyz.
type ReadinessResponse struct {
	Status      string `json:"status"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}
