package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_MODE", "")
	t.Setenv("FUSION_KEY", "")
	t.Setenv("LLM_API_BASE", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreModeDirect, cfg.Store.Mode)
	assert.Equal(t, FusionKeyTitle, cfg.Fusion.Key)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.APIBase)
	assert.Equal(t, "llama3.2:1b", cfg.LLM.ChatModel)
	assert.Equal(t, 10*time.Second, cfg.Fusion.FilterTimeout)
	assert.False(t, cfg.Cache.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_MODE", "HTTP")
	t.Setenv("STORE_API_BASE", "http://movies.internal/api/v1/")
	t.Setenv("FUSION_KEY", "title_year")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CACHE_TTL", "60")
	t.Setenv("LLM_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreModeHTTP, cfg.Store.Mode)
	assert.Equal(t, "http://movies.internal/api/v1", cfg.Store.APIBase)
	assert.Equal(t, FusionKeyTitleYear, cfg.Fusion.Key)
	assert.True(t, cfg.Cache.Enabled())
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.LLM.Enabled)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown store mode", key: "STORE_MODE", val: "grpc"},
		{name: "unknown fusion key", key: "FUSION_KEY", val: "imdb_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_FLOAT", "1.2.3")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_SECONDS", "-5")

	assert.Equal(t, 7, getEnvAsInt("X_INT", 7))
	assert.Equal(t, 0.5, getEnvAsFloat("X_FLOAT", 0.5))
	assert.True(t, getEnvAsBool("X_BOOL", true))
	assert.Equal(t, 3*time.Second, getEnvAsSeconds("X_SECONDS", 3))
}

func TestGetPostgreSQLDSN(t *testing.T) {
	cfg := &Config{PostgreSQL: PostgreSQLConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Database: "movies", SSLMode: "disable",
	}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=movies sslmode=disable", cfg.GetPostgreSQLDSN())

	cfg.PostgreSQL.DSN = "postgres://u:p@db/movies"
	assert.Equal(t, "postgres://u:p@db/movies", cfg.GetPostgreSQLDSN())
}
