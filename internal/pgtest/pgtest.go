// Package pgtest connects repository integration tests to a real PostgreSQL.
//
// Tests run only when DB_HOST_TEST is set; otherwise Require skips them.
package pgtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/smartbasket/internal/config"
	"github.com/vasiliy-maslov/smartbasket/internal/db"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Config reads DB_*_TEST variables.
func Config() config.PostgresConfig {
	return config.PostgresConfig{
		Host:           os.Getenv("DB_HOST_TEST"),
		Port:           getEnv("DB_PORT_TEST", "5432"),
		User:           getEnv("DB_USER_TEST", "postgres"),
		Password:       getEnv("DB_PASSWORD_TEST", "123456"),
		DBName:         getEnv("DB_NAME_TEST", "smartbasket_test"),
		SSLMode:        getEnv("DB_SSLMODE_TEST", "disable"),
		MaxConns:       5,
		MinConns:       1,
		MigrationsPath: migrationsDir(),
	}
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// Connect migrates the test database and opens a pool. It returns a nil pool
// when no test database is configured.
func Connect() (*pgxpool.Pool, error) {
	cfg := Config()
	if cfg.Host == "" {
		log.Info().Msg("DB_HOST_TEST not set, integration tests will be skipped")
		return nil, nil
	}

	if err := db.ApplyMigrations(cfg); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}
	return pg.Pool, nil
}

// Main is a TestMain body shared by repository packages.
func Main(m *testing.M, pool **pgxpool.Pool) {
	p, err := Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare test database")
	}
	*pool = p

	code := m.Run()

	if p != nil {
		p.Close()
	}
	os.Exit(code)
}

func Require(tb testing.TB, pool *pgxpool.Pool) {
	tb.Helper()
	if pool == nil {
		tb.Skip("integration test: set DB_HOST_TEST to run")
	}
}

// Truncate empties the given tables. Seeded platforms are never touched unless named.
func Truncate(tb testing.TB, pool *pgxpool.Pool, tables ...string) {
	tb.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	require.NoError(tb, err, "failed to truncate %v", tables)
}
