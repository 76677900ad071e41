package config_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/smartbasket/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "postgres")
	t.Setenv("DB_PASSWORD", "123456")
	t.Setenv("DB_NAME", "smartbasket")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Equal(t, int32(2), cfg.Postgres.MinConns)
	assert.Equal(t, 30*time.Minute, cfg.Postgres.MaxConnLifetime)
	assert.Equal(t, []string{"http://localhost:8080", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Order.StrictTransitions)
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_MAX_CONNS", "20")
	t.Setenv("DB_MAX_CONN_LIFETIME", "1h")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("ORDER_STRICT_TRANSITIONS", "true")

	cfg, err := config.FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, int32(20), cfg.Postgres.MaxConns)
	assert.Equal(t, time.Hour, cfg.Postgres.MaxConnLifetime)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Order.StrictTransitions)
}

func TestFromEnv_MissingRequired(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_NAME", "")

	cfg, err := config.FromEnv()
	require.Error(t, err)
	require.Nil(t, cfg)
	assert.Contains(t, err.Error(), "DB_HOST")
	assert.Contains(t, err.Error(), "DB_NAME")
}

func TestFromEnv_InvalidNumber(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_MAX_CONNS", "many")

	_, err := config.FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_MAX_CONNS")
}

func TestFromEnv_MinExceedsMax(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_MAX_CONNS", "2")
	t.Setenv("DB_MIN_CONNS", "5")

	_, err := config.FromEnv()
	require.Error(t, err)
}

func TestPostgresConfig_URLs(t *testing.T) {
	p := config.PostgresConfig{
		Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable",
	}

	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", p.DSN())
	assert.Equal(t, "pgx5://u:p@db:5432/n?sslmode=disable", p.MigrateURL())
}

func TestPostgresConfig_URLsEscapeCredentials(t *testing.T) {
	p := config.PostgresConfig{
		Host: "db", Port: "5432", User: "app user", Password: "p@ss:w/rd #1", DBName: "n", SSLMode: "disable",
	}

	for _, raw := range []string{p.DSN(), p.MigrateURL()} {
		u, err := url.Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "app user", u.User.Username())
		pass, ok := u.User.Password()
		require.True(t, ok)
		assert.Equal(t, "p@ss:w/rd #1", pass)
		assert.Equal(t, "db:5432", u.Host)
		assert.Equal(t, "/n", u.Path)
		assert.Equal(t, "disable", u.Query().Get("sslmode"))
	}
}
