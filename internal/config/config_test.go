package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "attendance.db", cfg.Database.Filename)
	assert.Equal(t, 255, cfg.Validation.TaskNameMaxLength)
	assert.Equal(t, 60*time.Second, cfg.Report.CacheTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ATT_SERVER_ADDR", ":9090")
	t.Setenv("ATT_DB_QUERY_TIMEOUT", "30s")
	t.Setenv("ATT_VALIDATION_TASK_NAME_MAX", "80")
	t.Setenv("ATT_REPORT_CACHE_TTL", "90s")
	t.Setenv("ATT_AUTH_TOKENS", "tok-a:u1, tok-b:u2")
	t.Setenv("ATT_LOG_DEVELOPMENT", "true")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 80, cfg.Validation.TaskNameMaxLength)
	assert.Equal(t, 90*time.Second, cfg.Report.CacheTTL)
	assert.Equal(t, map[string]string{"tok-a": "u1", "tok-b": "u2"}, cfg.Auth.Tokens)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadFromEnvironment_IgnoresUnparseableValues(t *testing.T) {
	t.Setenv("ATT_DB_QUERY_TIMEOUT", "not-a-duration")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Database.QueryTimeout)
}

func TestLoadFromEnvironment_RejectsMalformedTokens(t *testing.T) {
	t.Setenv("ATT_AUTH_TOKENS", "missing-user-part")

	_, err := NewLoader().Load()
	require.Error(t, err)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "auth.tokens", cfgErr.Field)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Config)
		expectedField string
	}{
		{
			name:          "should reject empty server addr",
			mutate:        func(c *Config) { c.Server.Addr = "" },
			expectedField: "server.addr",
		},
		{
			name:          "should reject empty database dir",
			mutate:        func(c *Config) { c.Database.Dir = "" },
			expectedField: "database.dir",
		},
		{
			name:          "should reject non-positive query timeout",
			mutate:        func(c *Config) { c.Database.QueryTimeout = 0 },
			expectedField: "database.query_timeout",
		},
		{
			name:          "should reject zero task name length",
			mutate:        func(c *Config) { c.Validation.TaskNameMaxLength = 0 },
			expectedField: "validation.task_name_max_length",
		},
		{
			name:          "should reject negative cache TTL",
			mutate:        func(c *Config) { c.Report.CacheTTL = -time.Second },
			expectedField: "report.cache_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.expectedField, cfgErr.Field)
		})
	}
}
