package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ToolName identifies one filter tool
type ToolName string

// Known filter tools
const (
	ToolTitleSearch  ToolName = "titleSearch"
	ToolYearSearch   ToolName = "yearSearch"
	ToolGenreSearch  ToolName = "genreSearch"
	ToolSearchRating ToolName = "searchRating"
)

// Dimension returns the record field the tool filters on
func (t ToolName) Dimension() string {
	switch t {
	case ToolTitleSearch:
		return "title"
	case ToolYearSearch:
		return "year"
	case ToolGenreSearch:
		return "genre"
	case ToolSearchRating:
		return "rating"
	}
	return string(t)
}

// DisplayRank orders dimensions for headers: title, genre, year, rating
func (t ToolName) DisplayRank() int {
	switch t {
	case ToolTitleSearch:
		return 0
	case ToolGenreSearch:
		return 1
	case ToolYearSearch:
		return 2
	case ToolSearchRating:
		return 3
	}
	return 4
}

// FilterArgs holds the validated argument of a filter. Exactly one field is
// set, matching the tool.
type FilterArgs struct {
	Title  *string  `json:"title,omitempty"`
	Year   *int     `json:"year,omitempty"`
	Genre  *string  `json:"genre,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
}

// FilterSpec is one applicable filter for a query
type FilterSpec struct {
	Tool ToolName   `json:"tool"`
	Args FilterArgs `json:"arguments"`
}

// Value returns the filter argument rendered as text
func (f FilterSpec) Value() string {
	switch {
	case f.Args.Title != nil:
		return *f.Args.Title
	case f.Args.Genre != nil:
		return *f.Args.Genre
	case f.Args.Year != nil:
		return strconv.Itoa(*f.Args.Year)
	case f.Args.Rating != nil:
		return FormatRating(*f.Args.Rating)
	}
	return ""
}

// String renders the filter as dimension=value, e.g. "genre=Action"
func (f FilterSpec) String() string {
	return fmt.Sprintf("%s=%s", f.Tool.Dimension(), f.Value())
}

// Key identifies a filter for duplicate collapsing and caching
func (f FilterSpec) Key() string {
	return string(f.Tool) + ":" + strings.ToLower(strings.TrimSpace(f.Value()))
}

// FormatRating renders a rating without trailing zeros (7 -> "7", 7.5 -> "7.5")
func FormatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// DecisionKind distinguishes the three router outcomes
type DecisionKind string

const (
	DecisionFilters DecisionKind = "filters"
	DecisionText    DecisionKind = "text"
	DecisionError   DecisionKind = "error"
)

// RoutingDecision is the Query Router's output. Filters is non-empty only
// for DecisionFilters, and Text is empty in that case.
type RoutingDecision struct {
	Kind    DecisionKind `json:"kind"`
	Filters []FilterSpec `json:"filters,omitempty"`
	Text    string       `json:"text,omitempty"`
	Err     error        `json:"-"`
}

// NewFilterDecision builds a decision carrying filters only
func NewFilterDecision(filters []FilterSpec) RoutingDecision {
	return RoutingDecision{Kind: DecisionFilters, Filters: filters}
}

// NewTextDecision builds a conversational decision
func NewTextDecision(text string) RoutingDecision {
	return RoutingDecision{Kind: DecisionText, Text: text}
}

// NewErrorDecision builds a degraded decision carrying an apology text
func NewErrorDecision(err error, apology string) RoutingDecision {
	return RoutingDecision{Kind: DecisionError, Text: apology, Err: err}
}

// HasFilters reports whether the decision asks for filter execution
func (d RoutingDecision) HasFilters() bool {
	return d.Kind == DecisionFilters && len(d.Filters) > 0
}

// FilterStrings renders every filter as dimension=value
func FilterStrings(filters []FilterSpec) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		out = append(out, f.String())
	}
	return out
}
