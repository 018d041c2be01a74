package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "stripe", cfg.Payment.DefaultProcessor)
	assert.Equal(t, uint(3), cfg.Payment.RetryMaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.Payment.RefundLockTTL)
	assert.Equal(t, 24*time.Hour, cfg.Payment.IdempotencyTTL)
	assert.Equal(t, 10*time.Second, cfg.Worker.PollInterval)
	assert.Equal(t, 50, cfg.Worker.BatchSize)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CASHIER_SERVER_PORT", "9090")
	t.Setenv("CASHIER_PAYMENT_DEFAULT_PROCESSOR", "paypal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "paypal", cfg.Payment.DefaultProcessor)
}

func TestValidate_Errors(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	cfg := valid()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Payment.DefaultProcessor = ""
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Payment.RefundLockTTL = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Payment.AllowedCurrencies = []string{"DOLLARS"}
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Worker.BatchSize = 0
	assert.Error(t, cfg.Validate())
}

func TestPaymentConfig_CurrencyAllowed(t *testing.T) {
	cfg := PaymentConfig{AllowedCurrencies: []string{"USD", "EUR"}}

	assert.True(t, cfg.CurrencyAllowed("USD"))
	assert.True(t, cfg.CurrencyAllowed("usd"))
	assert.False(t, cfg.CurrencyAllowed("EGP"))

	// An empty allow-list permits every currency.
	open := PaymentConfig{}
	assert.True(t, open.CurrencyAllowed("EGP"))
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db", Port: 5432, User: "cashier", Password: "secret",
		Database: "cashier", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=cashier password=secret dbname=cashier sslmode=disable",
		cfg.DatabaseDSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "cache", Port: 6379}
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
}
