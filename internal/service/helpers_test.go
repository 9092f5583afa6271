package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"moviechat/internal/config"
	"moviechat/internal/model"
	"moviechat/internal/tools"
)

type stubChat struct {
	mu       sync.Mutex
	result   *ChatWithToolsResult
	err      error
	disabled bool
	messages []ChatMessage
	defs     []tools.ToolDef
	calls    int
}

func (s *stubChat) ChatWithTools(ctx context.Context, messages []ChatMessage, defs []tools.ToolDef) (*ChatWithToolsResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.messages = messages
	s.defs = defs
	return s.result, s.err
}

func (s *stubChat) IsEnabled() bool { return !s.disabled }

func replyWithCalls(calls ...ToolCall) *stubChat {
	return &stubChat{result: &ChatWithToolsResult{ToolCalls: calls, FinishReason: "tool_calls"}}
}

func replyWithText(text string) *stubChat {
	return &stubChat{result: &ChatWithToolsResult{Content: text, FinishReason: "stop"}}
}

func call(name, args string) ToolCall {
	return ToolCall{Name: name, Arguments: json.RawMessage(args)}
}

// memStore is an in-memory movie store whose dimensions can be made to fail
type memStore struct {
	mu     sync.Mutex
	movies []model.MovieRecord
	fail   map[model.ToolName]error
	delay  time.Duration
	calls  map[model.ToolName]int
}

func newMemStore(movies ...model.MovieRecord) *memStore {
	return &memStore{movies: movies, fail: map[model.ToolName]error{}, calls: map[model.ToolName]int{}}
}

func (s *memStore) filter(ctx context.Context, tool model.ToolName, keep func(m model.MovieRecord) bool) ([]model.MovieRecord, error) {
	s.mu.Lock()
	s.calls[tool]++
	err := s.fail[tool]
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	out := []model.MovieRecord{}
	for _, m := range s.movies {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) FindByTitle(ctx context.Context, title string) ([]model.MovieRecord, error) {
	return s.filter(ctx, model.ToolTitleSearch, func(m model.MovieRecord) bool {
		return m.Title != nil && strings.Contains(strings.ToLower(*m.Title), strings.ToLower(title))
	})
}

func (s *memStore) FindByYear(ctx context.Context, year int) ([]model.MovieRecord, error) {
	return s.filter(ctx, model.ToolYearSearch, func(m model.MovieRecord) bool {
		return m.Year != nil && *m.Year == year
	})
}

func (s *memStore) FindByGenre(ctx context.Context, genre string) ([]model.MovieRecord, error) {
	return s.filter(ctx, model.ToolGenreSearch, func(m model.MovieRecord) bool {
		return m.Genre != nil && strings.Contains(strings.ToLower(*m.Genre), strings.ToLower(genre))
	})
}

func (s *memStore) FindByMinRating(ctx context.Context, rating float64) ([]model.MovieRecord, error) {
	return s.filter(ctx, model.ToolSearchRating, func(m model.MovieRecord) bool {
		return m.Rating != nil && *m.Rating >= rating
	})
}

func movie(id int64, title string, year int, genre string, rating float64) model.MovieRecord {
	return model.MovieRecord{ID: id, Title: &title, Year: &year, Genre: &genre, Rating: &rating}
}

func catalogue() *memStore {
	return newMemStore(
		movie(1, "The Matrix", 1999, "Action-Sci-Fi", 8.7),
		movie(2, "Fight Club", 1999, "Drama", 8.8),
		movie(3, "Inception", 2010, "Action-Thriller", 8.8),
		movie(4, "Heat", 1995, "Crime-Thriller", 8.3),
		movie(5, "Catwoman", 2004, "Action", 3.4),
		movie(6, "The Mummy", 1999, "Action-Adventure", 7.1),
		movie(7, "Dune", 1984, "Sci-Fi", 6.3),
		movie(8, "Dune", 2021, "Sci-Fi", 8.0),
	)
}

func fusionConfig() config.FusionConfig {
	return config.FusionConfig{FilterTimeout: 2 * time.Second, Key: config.FusionKeyTitle}
}

func newRegistry(store tools.MovieStore) *tools.Registry {
	return tools.NewRegistryForYear(store, 2026)
}

func genre(g string) model.FilterSpec {
	return model.FilterSpec{Tool: model.ToolGenreSearch, Args: model.FilterArgs{Genre: &g}}
}

func year(y int) model.FilterSpec {
	return model.FilterSpec{Tool: model.ToolYearSearch, Args: model.FilterArgs{Year: &y}}
}

func rating(r float64) model.FilterSpec {
	return model.FilterSpec{Tool: model.ToolSearchRating, Args: model.FilterArgs{Rating: &r}}
}

func title(t string) model.FilterSpec {
	return model.FilterSpec{Tool: model.ToolTitleSearch, Args: model.FilterArgs{Title: &t}}
}

func titles(records []model.MovieRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, *r.Title)
	}
	return out
}
