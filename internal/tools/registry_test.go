package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"moviechat/internal/apperrors"
	"moviechat/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	movies []model.MovieRecord
	err    error
	calls  int
}

func (s *memStore) filter(keep func(m model.MovieRecord) bool) ([]model.MovieRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []model.MovieRecord
	for _, m := range s.movies {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) FindByTitle(ctx context.Context, title string) ([]model.MovieRecord, error) {
	return s.filter(func(m model.MovieRecord) bool {
		return m.Title != nil && strings.Contains(strings.ToLower(*m.Title), strings.ToLower(title))
	})
}

func (s *memStore) FindByYear(ctx context.Context, year int) ([]model.MovieRecord, error) {
	return s.filter(func(m model.MovieRecord) bool { return m.Year != nil && *m.Year == year })
}

func (s *memStore) FindByGenre(ctx context.Context, genre string) ([]model.MovieRecord, error) {
	return s.filter(func(m model.MovieRecord) bool {
		return m.Genre != nil && strings.Contains(strings.ToLower(*m.Genre), strings.ToLower(genre))
	})
}

func (s *memStore) FindByMinRating(ctx context.Context, rating float64) ([]model.MovieRecord, error) {
	return s.filter(func(m model.MovieRecord) bool { return m.Rating != nil && *m.Rating >= rating })
}

func movie(id int64, title string, year int, genre string, rating float64) model.MovieRecord {
	return model.MovieRecord{ID: id, Title: &title, Year: &year, Genre: &genre, Rating: &rating}
}

func catalogue() *memStore {
	return &memStore{movies: []model.MovieRecord{
		movie(1, "The Matrix", 1999, "Action-Sci-Fi", 8.7),
		movie(2, "Fight Club", 1999, "Drama", 8.8),
		movie(3, "Inception", 2010, "Action-Thriller", 8.8),
		movie(4, "Heat", 1995, "Crime-Thriller", 8.3),
		movie(5, "Catwoman", 2004, "Action", 3.4),
	}}
}

func TestRegistry_Definitions(t *testing.T) {
	r := NewRegistryForYear(catalogue(), 2026)
	defs := r.Definitions()

	require.Len(t, defs, 4)
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		assert.Equal(t, "function", d.Type)
		assert.NotEmpty(t, d.Function.Description)
		assert.Equal(t, "object", d.Function.Parameters["type"])
		names = append(names, d.Function.Name)
	}
	assert.ElementsMatch(t, []string{"searchRating", "yearSearch", "titleSearch", "genreSearch"}, names)

	data, err := json.Marshal(defs[1])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"maximum":2026`)
}

func TestRegistry_GenreMatchesPartOfCompositeLabel(t *testing.T) {
	r := NewRegistryForYear(catalogue(), 2026)
	ctx := context.Background()

	var desc string
	for _, d := range r.Definitions() {
		if d.Function.Name == "genreSearch" {
			desc = d.Function.Description
		}
	}
	assert.Contains(t, desc, "Partial genre names match composite labels")

	spec, err := r.Parse("genreSearch", json.RawMessage(`{"genre": "Thriller"}`))
	require.NoError(t, err)
	movies, err := r.Execute(ctx, spec)
	require.NoError(t, err)
	require.Len(t, movies, 2)
	assert.Equal(t, "Inception", *movies[0].Title)
	assert.Equal(t, "Heat", *movies[1].Title)

	// The argument is matched whole, not split on the dash
	spec, err = r.Parse("genreSearch", json.RawMessage(`{"genre": "Thriller-Action"}`))
	require.NoError(t, err)
	movies, err = r.Execute(ctx, spec)
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestRegistry_Parse(t *testing.T) {
	r := NewRegistryForYear(catalogue(), 2026)

	tests := []struct {
		name    string
		tool    string
		args    string
		want    string
		wantErr bool
	}{
		{name: "rating", tool: "searchRating", args: `{"rating": 7}`, want: "rating=7"},
		{name: "rating bounds inclusive", tool: "searchRating", args: `{"rating": 10}`, want: "rating=10"},
		{name: "rating numeric string", tool: "searchRating", args: `{"rating": "7.5"}`, want: "rating=7.5"},
		{name: "rating too high", tool: "searchRating", args: `{"rating": 11}`, wantErr: true},
		{name: "rating negative", tool: "searchRating", args: `{"rating": -1}`, wantErr: true},
		{name: "rating not a number", tool: "searchRating", args: `{"rating": "high"}`, wantErr: true},
		{name: "year", tool: "yearSearch", args: `{"year": 1999}`, want: "year=1999"},
		{name: "year string", tool: "yearSearch", args: `{"year": "1999"}`, want: "year=1999"},
		{name: "year fractional", tool: "yearSearch", args: `{"year": 1999.5}`, wantErr: true},
		{name: "year too early", tool: "yearSearch", args: `{"year": 1899}`, wantErr: true},
		{name: "year in future", tool: "yearSearch", args: `{"year": 2027}`, wantErr: true},
		{name: "title", tool: "titleSearch", args: `{"title": " Inception "}`, want: "title=Inception"},
		{name: "title coerced from number", tool: "titleSearch", args: `{"title": 1917}`, want: "title=1917"},
		{name: "title empty", tool: "titleSearch", args: `{"title": "  "}`, wantErr: true},
		{name: "genre", tool: "genreSearch", args: `{"genre": "Action-Thriller"}`, want: "genre=Action-Thriller"},
		{name: "genre alias", tool: "genreSearch", args: `{"genre": "sci fi"}`, want: "genre=Sci-Fi"},
		{name: "genre too short", tool: "genreSearch", args: `{"genre": "ab"}`, wantErr: true},
		{name: "genre too long", tool: "genreSearch", args: `{"genre": "` + strings.Repeat("a", 41) + `"}`, wantErr: true},
		{name: "genre not a string", tool: "genreSearch", args: `{"genre": 5}`, wantErr: true},
		{name: "missing argument", tool: "yearSearch", args: `{}`, wantErr: true},
		{name: "string-encoded arguments", tool: "yearSearch", args: `"{\"year\": 2010}"`, want: "year=2010"},
		{name: "malformed arguments", tool: "yearSearch", args: `[1999]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := r.Parse(tt.tool, json.RawMessage(tt.args))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err), "want validation error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.String())
		})
	}
}

func TestRegistry_ParseUnknownTool(t *testing.T) {
	r := NewRegistry(catalogue())

	_, err := r.Parse("actorSearch", json.RawMessage(`{"actor": "Keanu"}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnknownTool, apperrors.CodeOf(err))
	assert.False(t, r.Known("actorSearch"))
	assert.True(t, r.Known("yearSearch"))
}

func TestRegistry_ExecuteFilters(t *testing.T) {
	r := NewRegistryForYear(catalogue(), 2026)
	ctx := context.Background()

	parse := func(tool, args string) model.FilterSpec {
		spec, err := r.Parse(tool, json.RawMessage(args))
		require.NoError(t, err)
		return spec
	}

	rated, err := r.Execute(ctx, parse("searchRating", `{"rating": 8.7}`))
	require.NoError(t, err)
	for _, m := range rated {
		assert.GreaterOrEqual(t, *m.Rating, 8.7)
	}
	assert.Len(t, rated, 3)

	year, err := r.Execute(ctx, parse("yearSearch", `{"year": 1999}`))
	require.NoError(t, err)
	assert.Len(t, year, 2)

	thrillers, err := r.Execute(ctx, parse("genreSearch", `{"genre": "Thriller"}`))
	require.NoError(t, err)
	assert.Len(t, thrillers, 2)

	lower, err := r.Execute(ctx, parse("titleSearch", `{"title": "inception"}`))
	require.NoError(t, err)
	upper, err := r.Execute(ctx, parse("titleSearch", `{"title": "INCEPTION"}`))
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestRegistry_ExecuteNoMatchesIsEmptyNotError(t *testing.T) {
	r := NewRegistryForYear(catalogue(), 2026)
	year := 1950

	movies, err := r.Execute(context.Background(), model.FilterSpec{Tool: model.ToolYearSearch, Args: model.FilterArgs{Year: &year}})
	require.NoError(t, err)
	assert.NotNil(t, movies)
	assert.Empty(t, movies)
}

func TestRegistry_ExecuteValidatesBeforeStore(t *testing.T) {
	store := catalogue()
	r := NewRegistryForYear(store, 2026)
	rating := 12.0

	_, err := r.Execute(context.Background(), model.FilterSpec{Tool: model.ToolSearchRating, Args: model.FilterArgs{Rating: &rating}})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, store.calls)

	year := 2000
	_, err = r.Execute(context.Background(), model.FilterSpec{Tool: model.ToolSearchRating, Args: model.FilterArgs{Year: &year}})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, store.calls)
}

func TestRegistry_ExecuteStoreFailure(t *testing.T) {
	store := catalogue()
	store.err = errors.New("connection refused")
	r := NewRegistryForYear(store, 2026)
	genre := "Drama"

	_, err := r.Execute(context.Background(), model.FilterSpec{Tool: model.ToolGenreSearch, Args: model.FilterArgs{Genre: &genre}})
	require.Error(t, err)
	assert.True(t, apperrors.IsExecutor(err))
	assert.False(t, apperrors.IsValidation(err))
	assert.ErrorIs(t, err, store.err)
}
