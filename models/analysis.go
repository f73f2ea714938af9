package models

import (
	"time"

	"github.com/google/uuid"
)

// ErrorKind classifies analysis failures for reporting and metrics
type ErrorKind string

const (
	// ErrKindConfiguration is the only kind that halts startup
	ErrKindConfiguration ErrorKind = "configuration_error"
	ErrKindDataFetch     ErrorKind = "data_fetch_error"
	ErrKindEmptyResponse ErrorKind = "empty_response"
	ErrKindParse         ErrorKind = "parse_error"
	ErrKindMissingField  ErrorKind = "missing_field"
	ErrKindEmptyResults  ErrorKind = "empty_results"
	ErrKindHTTP          ErrorKind = "http_error"
	ErrKindNetwork       ErrorKind = "network_error"
	ErrKindTimeout       ErrorKind = "timeout"
)

// AnalysisRequest carries one user-triggered analysis run. It is constructed
// fresh per trigger and discarded after the remote call completes.
type AnalysisRequest struct {
	ID     uuid.UUID   `json:"id"`
	Ticker string      `json:"ticker"`
	Start  time.Time   `json:"start"`
	End    time.Time   `json:"end"`
	Series PriceSeries `json:"series"`
}

// NewAnalysisRequest builds a request over a fetched series
func NewAnalysisRequest(ticker string, start, end time.Time, series PriceSeries) AnalysisRequest {
	return AnalysisRequest{
		ID:     uuid.New(),
		Ticker: ticker,
		Start:  start,
		End:    end,
		Series: series,
	}
}

// AnalysisResult is the outcome of one analysis run: either the narrative
// recommendation text or a classified failure with diagnostic detail.
type AnalysisResult struct {
	OK      bool      `json:"ok"`
	Text    string    `json:"text,omitempty"`
	Kind    ErrorKind `json:"kind,omitempty"`
	Message string    `json:"message,omitempty"`
	// Detail holds the raw body, status line or underlying error message so
	// a failure can be diagnosed without re-invoking the remote call.
	Detail string `json:"detail,omitempty"`
}

// Success wraps recommendation text in a successful result
func Success(text string) AnalysisResult {
	return AnalysisResult{OK: true, Text: text}
}

// Failure wraps a classified error in a failed result
func Failure(kind ErrorKind, message, detail string) AnalysisResult {
	return AnalysisResult{OK: false, Kind: kind, Message: message, Detail: detail}
}
