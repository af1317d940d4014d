package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animator-service/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://app:secret@db:5432/gallery")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("GENERATION_API_URL", "https://api.example.com")

	cfg, err := config.New()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.Reconcile.PollInterval)
	assert.Equal(t, time.Second, cfg.Snapshot.Debounce)
	assert.Equal(t, int64(5<<20), cfg.Snapshot.QuotaBytes)
	assert.Equal(t, "file", cfg.Snapshot.Backend)
	assert.Equal(t, 0, cfg.Generation.DispatchConcurrency)
}

func TestValidate_ReportsEverything(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "0s")
	t.Setenv("SNAPSHOT_BACKEND", "s3")

	cfg, err := config.New()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"POSTGRES_DSN", "REDIS_ADDR", "GENERATION_API_URL", "POLL_INTERVAL", "SNAPSHOT_BACKEND"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestString_MasksSecrets(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://app:secret@db:5432/gallery")
	t.Setenv("GENERATION_API_TOKEN", "tok-123")

	cfg, err := config.New()
	require.NoError(t, err)

	s := cfg.String()
	assert.False(t, strings.Contains(s, "secret"))
	assert.False(t, strings.Contains(s, "tok-123"))
	assert.Contains(t, s, "postgres://app:****@db:5432/gallery")
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:****@h/db", config.RedactDSN("postgres://u:p@h/db"))
	assert.Equal(t, "postgres://h/db", config.RedactDSN("postgres://h/db"))
}

func TestValidate_PollJitterBoundedByInterval(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://app:secret@db:5432/gallery")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("GENERATION_API_URL", "https://api.example.com")
	t.Setenv("POLL_INTERVAL", "30s")

	tests := []struct {
		jitter  string
		wantErr bool
	}{
		{"0s", false},
		{"7500ms", false},
		{"8s", true},
		{"30s", true},
	}
	for _, tt := range tests {
		t.Run(tt.jitter, func(t *testing.T) {
			t.Setenv("POLL_JITTER", tt.jitter)
			cfg, err := config.New()
			require.NoError(t, err)

			err = cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "POLL_JITTER")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
