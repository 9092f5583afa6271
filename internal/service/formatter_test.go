package service

import (
	"encoding/json"
	"testing"

	"moviechat/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader(t *testing.T) {
	tests := []struct {
		name    string
		filters []model.FilterSpec
		want    string
	}{
		{"rating", []model.FilterSpec{rating(7)}, "Movies with rating 7 and above:"},
		{"fractional rating", []model.FilterSpec{rating(7.5)}, "Movies with rating 7.5 and above:"},
		{"year", []model.FilterSpec{year(1999)}, "Movies released in 1999:"},
		{"genre", []model.FilterSpec{genre("Horror")}, "Movies in the Horror genre:"},
		{"title", []model.FilterSpec{title("Inception")}, `Movies matching title "Inception":`},
		{
			"display order is title, genre, year, rating",
			[]model.FilterSpec{rating(7), year(1999), genre("Action"), title("Matrix")},
			`Movies matching title "Matrix", in the Action genre, released in 1999, with rating 7 and above:`,
		},
		{"none", nil, "Movies:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Header(tt.filters))
		})
	}
}

func TestResponseFormatter_FormatFused(t *testing.T) {
	f := NewResponseFormatter()
	matrix := movie(1, "The Matrix", 1999, "Action-Sci-Fi", 8.7)
	bare := model.MovieRecord{ID: 9}

	env := f.FormatFused(model.FusedResult{
		Status:  model.FusionMatched,
		Records: []model.MovieRecord{matrix, bare},
		Filters: []model.FilterSpec{genre("Action"), year(1999)},
		Outcomes: []model.FilterOutcome{
			{Filter: genre("Action"), Count: 4},
			{Filter: year(1999), Count: 3},
		},
	})

	assert.Equal(t, "Movies in the Action genre, released in 1999:", env.Message)
	require.Len(t, env.Movies, 2)
	assert.Equal(t, "The Matrix", env.Movies[0].Title)
	assert.Equal(t, model.DefaultTitle, env.Movies[1].Title)
	assert.Equal(t, model.DefaultDescription, env.Movies[1].Description)
	assert.Equal(t, model.DefaultNA, env.Movies[1].Year)
	assert.Equal(t, model.DefaultNA, env.Movies[1].Genre)
	assert.Equal(t, model.DefaultNA, env.Movies[1].Rating)

	data, err := json.Marshal(env)
	require.NoError(t, err)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 3)
	for _, e := range entries[1:] {
		for _, field := range []string{"title", "description", "year", "genre", "rating"} {
			assert.Contains(t, e, field)
		}
	}
}

func TestResponseFormatter_HeaderSkipsFailedFilters(t *testing.T) {
	f := NewResponseFormatter()

	env := f.FormatFused(model.FusedResult{
		Status:  model.FusionMatched,
		Records: []model.MovieRecord{movie(3, "Inception", 2010, "Action-Thriller", 8.8)},
		Filters: []model.FilterSpec{genre("Thriller"), year(1999)},
		Outcomes: []model.FilterOutcome{
			{Filter: genre("Thriller"), Count: 2},
			{Filter: year(1999), Failed: true},
		},
	})

	assert.Equal(t, "Movies in the Thriller genre:", env.Message)
}

func TestResponseFormatter_NoMatchMessages(t *testing.T) {
	f := NewResponseFormatter()
	filters := []model.FilterSpec{genre("Action"), year(1999)}

	noResults := f.FormatFused(model.FusedResult{Status: model.FusionNoResults, Filters: filters})
	upstream := f.FormatFused(model.FusedResult{Status: model.FusionUpstreamError, Filters: filters})
	noOverlap := f.FormatFused(model.FusedResult{Status: model.FusionNoOverlap, Filters: filters})

	assert.Equal(t, "No movies found for your search.", noResults.Message)
	assert.Equal(t, "No movies found or upstream API returned an error. Please try again later.", upstream.Message)
	assert.Equal(t, "No movies matched all filters: genre=Action, year=1999. Try relaxing one of them.", noOverlap.Message)

	for _, env := range []model.ResponseEnvelope{noResults, upstream, noOverlap} {
		assert.Empty(t, env.Movies)
	}
	assert.NotEqual(t, upstream.Message, noOverlap.Message)
}

func TestResponseFormatter_FormatText(t *testing.T) {
	env := NewResponseFormatter().FormatText("Hello! Ask me about movies.")

	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"message":"Hello! Ask me about movies."}]`, string(data))
}
