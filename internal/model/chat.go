package model

import "encoding/json"

// ChatRequest represents a chat query request
type ChatRequest struct {
	Search string `json:"search"`
}

// FusionStatus classifies the outcome of combining filter results
type FusionStatus string

const (
	FusionMatched       FusionStatus = "matched"        // at least one record survived
	FusionNoResults     FusionStatus = "no_results"     // every filter ran and found nothing
	FusionNoOverlap     FusionStatus = "no_overlap"     // filters found records but none in common
	FusionUpstreamError FusionStatus = "upstream_error" // nothing found and at least one filter errored
)

// FilterOutcome records how one filter execution went
type FilterOutcome struct {
	Filter FilterSpec `json:"filter"`
	Count  int        `json:"count"`
	Failed bool       `json:"failed"`
	Err    error      `json:"-"`
}

// FusedResult is the combined answer set of a routing decision's filters
type FusedResult struct {
	Status   FusionStatus    `json:"status"`
	Records  []MovieRecord   `json:"records"`
	Filters  []FilterSpec    `json:"filters"`
	Outcomes []FilterOutcome `json:"outcomes"`
}

// ResponseEnvelope is the final payload of a chat request. It serializes as
// an ordered list: one {message} header followed by zero or more movies.
type ResponseEnvelope struct {
	Message string
	Movies  []MovieEntry
}

// MessageEntry is the header element of an envelope
type MessageEntry struct {
	Message string `json:"message"`
}

// NewMessageEnvelope builds a message-only envelope
func NewMessageEnvelope(message string) ResponseEnvelope {
	return ResponseEnvelope{Message: message}
}

// Entries returns the envelope as its ordered element list
func (e ResponseEnvelope) Entries() []any {
	entries := make([]any, 0, len(e.Movies)+1)
	entries = append(entries, MessageEntry{Message: e.Message})
	for _, m := range e.Movies {
		entries = append(entries, m)
	}
	return entries
}

// MarshalJSON implements json.Marshaler
func (e ResponseEnvelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Entries())
}
