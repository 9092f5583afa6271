package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"moviechat/internal/model"
)

// No-match texts. Each outcome has its own wording so users can tell an
// empty catalogue answer from an upstream failure.
const (
	noResultsMessage     = "No movies found for your search."
	upstreamErrorMessage = "No movies found or upstream API returned an error. Please try again later."
	noOverlapFormat      = "No movies matched all filters: %s. Try relaxing one of them."
)

// ResponseFormatter builds the ResponseEnvelope returned to clients
type ResponseFormatter struct{}

// NewResponseFormatter creates a response formatter
func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

// FormatText wraps a conversational answer
func (f *ResponseFormatter) FormatText(text string) model.ResponseEnvelope {
	return model.NewMessageEnvelope(text)
}

// FormatFused renders a fused result as a header followed by movie entries,
// or as the no-match message for its status
func (f *ResponseFormatter) FormatFused(fused model.FusedResult) model.ResponseEnvelope {
	switch fused.Status {
	case model.FusionUpstreamError:
		return model.NewMessageEnvelope(upstreamErrorMessage)
	case model.FusionNoOverlap:
		return model.NewMessageEnvelope(fmt.Sprintf(noOverlapFormat, strings.Join(model.FilterStrings(fused.Filters), ", ")))
	}
	if len(fused.Records) == 0 {
		return model.NewMessageEnvelope(noResultsMessage)
	}

	movies := make([]model.MovieEntry, 0, len(fused.Records))
	for _, r := range fused.Records {
		movies = append(movies, r.Entry())
	}

	return model.ResponseEnvelope{
		Message: Header(appliedFilters(fused)),
		Movies:  movies,
	}
}

// Header describes the filters that produced a result, e.g.
// "Movies in the Action genre, released in 1999:"
func Header(filters []model.FilterSpec) string {
	ordered := make([]model.FilterSpec, len(filters))
	copy(ordered, filters)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Tool.DisplayRank() < ordered[j].Tool.DisplayRank()
	})

	clauses := make([]string, 0, len(ordered))
	for _, spec := range ordered {
		if clause := filterClause(spec); clause != "" {
			clauses = append(clauses, clause)
		}
	}
	if len(clauses) == 0 {
		return "Movies:"
	}
	return "Movies " + strings.Join(clauses, ", ") + ":"
}

func filterClause(spec model.FilterSpec) string {
	a := spec.Args
	switch spec.Tool {
	case model.ToolTitleSearch:
		if a.Title != nil {
			return fmt.Sprintf("matching title %q", *a.Title)
		}
	case model.ToolGenreSearch:
		if a.Genre != nil {
			return fmt.Sprintf("in the %s genre", *a.Genre)
		}
	case model.ToolYearSearch:
		if a.Year != nil {
			return "released in " + strconv.Itoa(*a.Year)
		}
	case model.ToolSearchRating:
		if a.Rating != nil {
			return fmt.Sprintf("with rating %s and above", model.FormatRating(*a.Rating))
		}
	}
	return ""
}

// appliedFilters drops filters whose execution failed, since the records do
// not reflect them
func appliedFilters(fused model.FusedResult) []model.FilterSpec {
	if len(fused.Outcomes) == 0 {
		return fused.Filters
	}
	applied := make([]model.FilterSpec, 0, len(fused.Outcomes))
	for _, o := range fused.Outcomes {
		if !o.Failed {
			applied = append(applied, o.Filter)
		}
	}
	return applied
}
