// internal/common/config/config_test.go

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "crm-concierge", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Query.MaxLimit)
	assert.Equal(t, 50, cfg.Query.DefaultLimit)
	assert.Equal(t, 15000, cfg.Query.Timeout)
	assert.Equal(t, "gemini-2.5-flash", cfg.GenAI.Model)
	assert.NotEmpty(t, cfg.NLU.DataKeywords)
	assert.NotEmpty(t, cfg.NLU.GreetingKeywords)
}

func TestValidateConfig(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	require.NoError(t, validateConfig(cfg))

	bad := &Config{Query: QueryConfig{MaxLimit: 100, DefaultLimit: 200, Timeout: 15000}}
	assert.Error(t, validateConfig(bad))

	tooFast := &Config{Query: QueryConfig{MaxLimit: 500, DefaultLimit: 50, Timeout: 10}}
	assert.Error(t, validateConfig(tooFast))
}

func TestGetDSN(t *testing.T) {
	p := PostgresConfig{
		Host: "db", Port: 5432, Database: "crm", User: "ro",
		Password: "secret", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=ro password=secret dbname=crm sslmode=disable",
		p.GetDSN())
}
