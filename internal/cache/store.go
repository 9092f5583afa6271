package cache

import (
	"context"
	"strconv"
	"strings"

	"moviechat/internal/model"
)

// Store is the find-by-field surface of a movie store
type Store interface {
	FindByTitle(ctx context.Context, title string) ([]model.MovieRecord, error)
	FindByYear(ctx context.Context, year int) ([]model.MovieRecord, error)
	FindByGenre(ctx context.Context, genre string) ([]model.MovieRecord, error)
	FindByMinRating(ctx context.Context, rating float64) ([]model.MovieRecord, error)
}

// CachedStore is a read-through cache in front of a Store. Empty results
// are cached; errors are not.
type CachedStore struct {
	store Store
	cache *RedisCache
}

// NewCachedStore decorates store with cache
func NewCachedStore(store Store, cache *RedisCache) *CachedStore {
	return &CachedStore{store: store, cache: cache}
}

func (s *CachedStore) FindByTitle(ctx context.Context, title string) ([]model.MovieRecord, error) {
	return s.readThrough(ctx, key(model.ToolTitleSearch, title), func() ([]model.MovieRecord, error) {
		return s.store.FindByTitle(ctx, title)
	})
}

func (s *CachedStore) FindByYear(ctx context.Context, year int) ([]model.MovieRecord, error) {
	return s.readThrough(ctx, key(model.ToolYearSearch, strconv.Itoa(year)), func() ([]model.MovieRecord, error) {
		return s.store.FindByYear(ctx, year)
	})
}

func (s *CachedStore) FindByGenre(ctx context.Context, genre string) ([]model.MovieRecord, error) {
	return s.readThrough(ctx, key(model.ToolGenreSearch, genre), func() ([]model.MovieRecord, error) {
		return s.store.FindByGenre(ctx, genre)
	})
}

func (s *CachedStore) FindByMinRating(ctx context.Context, rating float64) ([]model.MovieRecord, error) {
	return s.readThrough(ctx, key(model.ToolSearchRating, model.FormatRating(rating)), func() ([]model.MovieRecord, error) {
		return s.store.FindByMinRating(ctx, rating)
	})
}

func (s *CachedStore) readThrough(ctx context.Context, key string, fetch func() ([]model.MovieRecord, error)) ([]model.MovieRecord, error) {
	if movies, ok := s.cache.Get(ctx, key); ok {
		return movies, nil
	}

	movies, err := fetch()
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, movies)
	return movies, nil
}

// key matches model.FilterSpec.Key for the same filter
func key(tool model.ToolName, arg string) string {
	return string(tool) + ":" + strings.ToLower(strings.TrimSpace(arg))
}
