package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Helper function tests
// ---------------------------------------------------------------------------

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string // nil = don't set; pointer to distinguish "" from unset
		fallback string
		want     string
	}{
		{name: "returns fallback when unset", key: "SCRAWL_TEST_GETENV_UNSET", setVal: nil, fallback: "default", want: "default"},
		{name: "returns env value when set", key: "SCRAWL_TEST_GETENV_SET", setVal: strPtr("custom"), fallback: "default", want: "custom"},
		{name: "returns fallback when empty string", key: "SCRAWL_TEST_GETENV_EMPTY", setVal: strPtr(""), fallback: "default", want: "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got := getEnv(tc.key, tc.fallback)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		setVal   *string
		fallback int
		want     int
		wantErr  bool
	}{
		{name: "returns fallback when unset", key: "SCRAWL_TEST_INT_UNSET", setVal: nil, fallback: 42, want: 42},
		{name: "parses value", key: "SCRAWL_TEST_INT_SET", setVal: strPtr("7"), fallback: 42, want: 7},
		{name: "rejects garbage", key: "SCRAWL_TEST_INT_BAD", setVal: strPtr("seven"), fallback: 42, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.setVal != nil {
				t.Setenv(tc.key, *tc.setVal)
			}

			got, err := getEnvInt(tc.key, tc.fallback)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Run("parses duration", func(t *testing.T) {
		t.Setenv("SCRAWL_TEST_DUR", "90s")

		got, err := getEnvDuration("SCRAWL_TEST_DUR", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, 90*time.Second, got)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		t.Setenv("SCRAWL_TEST_DUR_BAD", "yesterday")

		_, err := getEnvDuration("SCRAWL_TEST_DUR_BAD", time.Minute)
		require.Error(t, err)
	})
}

func TestGetEnvList(t *testing.T) {
	t.Run("splits and trims", func(t *testing.T) {
		t.Setenv("SCRAWL_TEST_LIST", "a, b ,, c")

		got := getEnvList("SCRAWL_TEST_LIST", nil)
		assert.Equal(t, []string{"a", "b", "c"}, got)
	})
}

// ---------------------------------------------------------------------------
// Load / validate
// ---------------------------------------------------------------------------

func TestLoad(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"

	t.Run("defaults with secret set", func(t *testing.T) {
		t.Setenv("SCRAWL_JWT_SECRET", secret)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTTL)
	})

	t.Run("missing secret fails", func(t *testing.T) {
		t.Setenv("SCRAWL_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SCRAWL_JWT_SECRET")
	})

	t.Run("short secret fails", func(t *testing.T) {
		t.Setenv("SCRAWL_JWT_SECRET", "too-short")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad port fails", func(t *testing.T) {
		t.Setenv("SCRAWL_JWT_SECRET", secret)
		t.Setenv("SCRAWL_DB_PORT", "99999")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestDSN(t *testing.T) {
	t.Parallel()

	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "scrawl", SSLMode: "require"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=scrawl sslmode=require", c.DSN())
}
