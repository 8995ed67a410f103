package card

import "fmt"

// Fixed dashboard copy shared by the HTML page and the terminal view.
const (
	AppTitle          = "BULLSEYE AI"
	Tagline           = "Real-Time Market Pulse"
	SearchPlaceholder = "Search 50 trending stocks..."
	LoadingTitle      = "Fetching Market Data"
	LoadingDetail     = "Grounding predictions in real-time search results..."
	ErrorTitle        = "Build/Network Error"
	RetryLabel        = "Retry Sync"
	LiveLabel         = "Live Verification Active"
	SourcesTitle      = "Search Data Points"
	ExpectedLabel     = "7D Expected"
	AnalysisLabel     = "Market Analysis"
	Disclaimer        = "Financial data is AI-retrieved via Google Search. Verify all figures before making trades."
)

// SyncLabel formats the last-updated label.
func SyncLabel(lastUpdated string) string {
	return "Sync: " + lastUpdated
}

// NoResultsLabel is shown when the query filters out every instrument.
func NoResultsLabel(query string) string {
	return fmt.Sprintf("No results found for %q", query)
}
