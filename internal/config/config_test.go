package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://rafi-a12.netlify.app, http://localhost:5173")

	cfg, err := Load("api")
	require.NoError(t, err)

	assert.Equal(t, "api", cfg.RunMode)
	assert.Equal(t, 24*time.Hour, cfg.JwtTTL)
	assert.Equal(t, "usd", cfg.PaymentCurrency)
	assert.Equal(t, DefaultAllowedOrigins, cfg.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.AcceptLockTTL)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load("api")
	assert.ErrorContains(t, err, "MONGO_URI")
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REDIS_DB", "zero")

	_, err := Load("api")
	assert.ErrorContains(t, err, "invalid REDIS_DB")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitList(" a:9092 ,,b:9092 "))
	assert.Nil(t, splitList(""))
}
