// Package domain defines the dashboard view state and its transitions.
package domain

import (
	"slices"
	"time"

	"stock_forecast/internal/feature/forecast/domain/entity"
)

// LastUpdatedLayout is the short local time shown as "Sync: 3:04 PM".
const LastUpdatedLayout = "3:04 PM"

// DefaultFailureMessage is shown when a failed cycle carries no message.
const DefaultFailureMessage = "Failed to fetch market insights. Please ensure your API key is configured correctly."

// Mode is the single rendering mode active for a ViewState.
type Mode string

const (
	ModeLoading Mode = "loading"
	ModeFailed  Mode = "failed"
	ModeSuccess Mode = "success"
)

// ViewState is everything the dashboard renders.
type ViewState struct {
	Instruments []entity.Instrument `json:"instruments"`
	Loading     bool                `json:"loading"`
	Error       string              `json:"error,omitempty"`
	LastUpdated string              `json:"lastUpdated,omitempty"`
	Sources     []entity.Source     `json:"sources"`
}

// Initial returns the state of a freshly created dashboard.
func Initial() ViewState {
	return ViewState{
		Instruments: []entity.Instrument{},
		Loading:     true,
		Sources:     []entity.Source{},
	}
}

// Mode reports which view is active: loading wins over an error, an error wins over data.
func (s ViewState) Mode() Mode {
	switch {
	case s.Loading:
		return ModeLoading
	case s.Error != "":
		return ModeFailed
	default:
		return ModeSuccess
	}
}

// Clone returns a copy that shares no slices with s.
func (s ViewState) Clone() ViewState {
	s.Instruments = slices.Clone(s.Instruments)
	s.Sources = slices.Clone(s.Sources)
	return s
}

// Event is an input to Apply.
type Event interface {
	isEvent()
}

// FetchStarted marks the beginning of a fetch cycle.
type FetchStarted struct{}

// FetchSucceeded carries the result of a completed cycle.
type FetchSucceeded struct {
	Forecast entity.Forecast
	At       time.Time
	Location *time.Location
}

// FetchFailed carries the user-facing message of a failed cycle.
type FetchFailed struct {
	Message string
}

func (FetchStarted) isEvent()   {}
func (FetchSucceeded) isEvent() {}
func (FetchFailed) isEvent()    {}

// Apply returns the state that follows s after ev. It never mutates s.
//
// A failed cycle keeps the last good instruments and sources so clients can
// still show them under the error.
func Apply(s ViewState, ev Event) ViewState {
	next := s.Clone()
	switch e := ev.(type) {
	case FetchStarted:
		next.Loading = true
		next.Error = ""
	case FetchSucceeded:
		loc := e.Location
		if loc == nil {
			loc = time.Local
		}
		next = ViewState{
			Instruments: nonNil(slices.Clone(e.Forecast.Instruments)),
			Loading:     false,
			LastUpdated: e.At.In(loc).Format(LastUpdatedLayout),
			Sources:     nonNil(slices.Clone(e.Forecast.Sources)),
		}
	case FetchFailed:
		next.Loading = false
		next.Error = e.Message
		if next.Error == "" {
			next.Error = DefaultFailureMessage
		}
	}
	return next
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
