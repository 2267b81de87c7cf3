package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("NOTIFY_SINKS", "log")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 5, cfg.HTTP.RequestTimeoutSeconds)
	assert.Equal(t, "postgres", cfg.Transactions.Backend)
	assert.Equal(t, []string{"log"}, cfg.Notify.Sinks)
	assert.Equal(t, "@every 5s", cfg.Outbox.Schedule)
	assert.True(t, cfg.DB.Migrate)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.False(t, cfg.DB.ForceIPv4)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_MIGRATE", "false")
	t.Setenv("TRANSACTIONS_BACKEND", "Mongo")
	t.Setenv("NOTIFY_SINKS", " log, redis ,,")
	t.Setenv("OUTBOX_MAX_ATTEMPTS", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.DB.Migrate)
	assert.Equal(t, "mongo", cfg.Transactions.Backend)
	assert.Equal(t, []string{"log", "redis"}, cfg.Notify.Sinks)
	assert.Equal(t, 7, cfg.Outbox.MaxAttempts)
}

func TestLoad_Invalido(t *testing.T) {
	cases := map[string]map[string]string{
		"backend":         {"TRANSACTIONS_BACKEND": "sqlite"},
		"sink":            {"NOTIFY_SINKS": "log,kafka"},
		"webhook sin url": {"NOTIFY_SINKS": "webhook", "WEBHOOK_URL": ""},
		"timeout":         {"NOTIFY_SINKS": "log", "HTTP_REQUEST_TIMEOUT_SECONDS": "0"},
		"pool":            {"NOTIFY_SINKS": "log", "DB_MIN_CONNS": "30", "DB_MAX_CONNS": "10"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "ledger", Password: "p@ss:w", DBName: "retail", SSLMode: "disable"}
	assert.True(t, c.Enabled())
	assert.Equal(t, "postgres://ledger:p%40ss%3Aw@db:5432/retail?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
	assert.False(t, DBConfig{}.Enabled())
}
