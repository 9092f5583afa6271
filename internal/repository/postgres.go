package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"moviechat/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const movieColumns = "id, title, year, genre, country, rating, description"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresRepository handles movie store reads. The connection pool is
// established on first use and shared by every request afterwards.
type PostgresRepository struct {
	connect func() (*sqlx.DB, error)
	table   string

	mu sync.Mutex
	db *sqlx.DB
}

// NewPostgresRepository creates a PostgreSQL repository that connects lazily
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int, table string) *PostgresRepository {
	return &PostgresRepository{
		table: sanitizeTable(table),
		connect: func() (*sqlx.DB, error) {
			db, err := sqlx.Connect("postgres", dsn)
			if err != nil {
				return nil, fmt.Errorf("failed to connect to database: %w", err)
			}

			db.SetMaxOpenConns(maxConn)
			db.SetMaxIdleConns(maxIdleConn)
			db.SetConnMaxLifetime(5 * time.Minute)
			db.SetConnMaxIdleTime(2 * time.Minute)

			return db, nil
		},
	}
}

// NewPostgresRepositoryWithDB wraps an already open handle
func NewPostgresRepositoryWithDB(db *sqlx.DB, table string) *PostgresRepository {
	return &PostgresRepository{
		table: sanitizeTable(table),
		db:    db,
		connect: func() (*sqlx.DB, error) {
			return db, nil
		},
	}
}

// handle returns the pooled connection, establishing it on first use.
// A failed attempt is not remembered, so the next request retries.
func (r *PostgresRepository) handle() (*sqlx.DB, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		return r.db, nil
	}

	db, err := r.connect()
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// Ping checks that the store is reachable
func (r *PostgresRepository) Ping(ctx context.Context) error {
	db, err := r.handle()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close closes the database connection if one was established
func (r *PostgresRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// FindByTitle returns movies whose title contains title, case-insensitively
func (r *PostgresRepository) FindByTitle(ctx context.Context, title string) ([]model.MovieRecord, error) {
	return r.selectMovies(ctx, "title ILIKE $1", containsPattern(title))
}

// FindByYear returns movies released in exactly year
func (r *PostgresRepository) FindByYear(ctx context.Context, year int) ([]model.MovieRecord, error) {
	return r.selectMovies(ctx, "year = $1", year)
}

// FindByGenre returns movies whose genre label contains genre,
// case-insensitively, so "Thriller" matches "Action-Thriller"
func (r *PostgresRepository) FindByGenre(ctx context.Context, genre string) ([]model.MovieRecord, error) {
	return r.selectMovies(ctx, "genre ILIKE $1", containsPattern(genre))
}

// FindByMinRating returns movies rated at or above rating
func (r *PostgresRepository) FindByMinRating(ctx context.Context, rating float64) ([]model.MovieRecord, error) {
	return r.selectMovies(ctx, "rating >= $1", rating)
}

func (r *PostgresRepository) selectMovies(ctx context.Context, where string, arg interface{}) ([]model.MovieRecord, error) {
	db, err := r.handle()
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY id", movieColumns, r.table, where)

	movies := []model.MovieRecord{}
	if err := db.SelectContext(ctx, &movies, query, arg); err != nil {
		return nil, fmt.Errorf("failed to fetch movies: %w", err)
	}
	return movies, nil
}

// SearchLogEntry is one row of the chat query log
type SearchLogEntry struct {
	SearchID       string
	Query          string
	DecisionKind   string
	Filters        []byte // JSON
	ResultCount    int
	ResponseTimeMs int
}

// LogSearch logs a chat query
func (r *PostgresRepository) LogSearch(ctx context.Context, entry SearchLogEntry) error {
	db, err := r.handle()
	if err != nil {
		return err
	}

	logQuery := `
		INSERT INTO search_logs (search_id, query, decision_kind, filters, result_count, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = db.ExecContext(ctx, logQuery,
		entry.SearchID, entry.Query, entry.DecisionKind, entry.Filters, entry.ResultCount, entry.ResponseTimeMs)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// containsPattern builds an ILIKE substring pattern with LIKE wildcards escaped
func containsPattern(s string) string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + escaper.Replace(strings.TrimSpace(s)) + "%"
}

func sanitizeTable(table string) string {
	if !tableNamePattern.MatchString(table) {
		return "movies"
	}
	return table
}
