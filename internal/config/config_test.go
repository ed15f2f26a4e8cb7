package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServer(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("HLB_JWT_SECRET", "secret")

		cfg, err := LoadServer()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
		assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
		assert.Equal(t, 20, cfg.AuthRate)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("HLB_JWT_SECRET", "secret")
		t.Setenv("HLB_ADDR", ":9090")
		t.Setenv("HLB_TOKEN_TTL", "1h")
		t.Setenv("HLB_CORS_ORIGINS", "http://a.test,http://b.test")
		t.Setenv("HLB_AUTH_RATE", "0")

		cfg, err := LoadServer()
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, time.Hour, cfg.TokenTTL)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
		assert.Zero(t, cfg.AuthRate)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("HLB_JWT_SECRET", "")
		_, err := LoadServer()
		assert.Error(t, err)
	})

	t.Run("negative rate", func(t *testing.T) {
		t.Setenv("HLB_JWT_SECRET", "secret")
		t.Setenv("HLB_AUTH_RATE", "-1")
		_, err := LoadServer()
		assert.Error(t, err)
	})
}

func TestLoadClient(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadClient()
		require.NoError(t, err)
		assert.Equal(t, BackendLocal, cfg.Backend)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
	})

	t.Run("remote", func(t *testing.T) {
		t.Setenv("HLB_BACKEND", "remote")
		t.Setenv("HLB_SERVER", "http://api.test")
		t.Setenv("HLB_TOKEN", "tok")

		cfg, err := LoadClient()
		require.NoError(t, err)
		assert.Equal(t, BackendRemote, cfg.Backend)
		assert.Equal(t, "http://api.test", cfg.Server)
		assert.Equal(t, "tok", cfg.Token)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("HLB_BACKEND", "cloud")
		_, err := LoadClient()
		assert.Error(t, err)
	})
}
