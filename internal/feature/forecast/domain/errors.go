// Package domain defines domain-level errors for the forecast feature.
package domain

import "errors"

// Errors of a fetch cycle. Upper layers match them with errors.Is through *FetchError.
var (
	// ErrMissingAPIKey indicates that no Gemini API key is configured.
	// It is fatal: no request is attempted until the environment is fixed.
	ErrMissingAPIKey = errors.New("GEMINI_API_KEY is missing; configure the environment and restart")

	// ErrEmptyResponse indicates that the model returned blank text.
	ErrEmptyResponse = errors.New("the AI returned an empty response")

	// ErrParse indicates that no JSON array could be recovered from the reply.
	ErrParse = errors.New("failed to parse stock data JSON")

	// ErrTimeout indicates that the cycle exceeded its deadline.
	ErrTimeout = errors.New("market sync timed out")
)

// FetchError is returned by every failed fetch cycle.
// Message is safe to show to users; Err keeps the cause for logs and errors.Is.
type FetchError struct {
	Message string
	Err     error
}

func (e *FetchError) Error() string { return e.Message }

func (e *FetchError) Unwrap() error { return e.Err }
