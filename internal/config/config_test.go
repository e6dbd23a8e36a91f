package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joelkehle/bidvalue/internal/valuation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvIntInvalid(t *testing.T) {
	t.Setenv("TEST_INT_BAD", "abc")
	_, err := envInt("TEST_INT_BAD", 0)
	require.EqualError(t, err, `TEST_INT_BAD="abc" is not a valid integer`)
}

func TestEnvFallbacks(t *testing.T) {
	v, err := envInt("TEST_INT_MISSING", 99)
	require.NoError(t, err)
	assert.Equal(t, 99, v)

	b, err := envBool("TEST_BOOL_MISSING", true)
	require.NoError(t, err)
	assert.True(t, b)

	assert.Equal(t, "x", envStr("TEST_STR_MISSING", "x"))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BIDVALUE_CONFIG", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Simulations)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
	assert.Equal(t, valuation.DefaultThresholds(), cfg.Thresholds)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
	assert.Equal(t, "bidvalue", cfg.ServiceName)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bidvalue.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
simulations: 2000
workers: 2
seed: 17
log_level: debug
thresholds:
  strong_multiple: 1.6
  participate_multiple: 1.1
  conditional_multiple: 0.8
  strong_floor: 300
  participate_floor: 100
`), 0o600))
	t.Setenv("BIDVALUE_CONFIG", path)
	t.Setenv("BIDVALUE_WORKERS", "6")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, path, cfg.File)
	assert.Equal(t, 2000, cfg.Simulations)
	assert.Equal(t, 6, cfg.Workers, "environment overrides the file")
	assert.Equal(t, uint64(17), cfg.Seed)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, 300.0, cfg.Thresholds.StrongFloor)
	assert.Equal(t, 1.6, cfg.Thresholds.StrongMultiple)

	ec := cfg.Engine()
	assert.Equal(t, 2000, ec.Simulations)
	assert.Equal(t, 6, ec.Workers)
	assert.Equal(t, uint64(17), ec.Seed)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"too few simulations", "BIDVALUE_SIMULATIONS", "50"},
		{"too many simulations", "BIDVALUE_SIMULATIONS", "200000"},
		{"non-numeric simulations", "BIDVALUE_SIMULATIONS", "lots"},
		{"zero workers", "BIDVALUE_WORKERS", "0"},
		{"negative seed", "BIDVALUE_SEED", "-3"},
		{"bad level", "BIDVALUE_LOG_LEVEL", "loud"},
		{"bad insecure flag", "OTEL_INSECURE", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BIDVALUE_CONFIG", "")
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadSimulationSentinel(t *testing.T) {
	t.Setenv("BIDVALUE_CONFIG", "")
	t.Setenv("BIDVALUE_SIMULATIONS", "10")
	_, err := Load()
	require.ErrorIs(t, err, valuation.ErrSimulationCount)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("BIDVALUE_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read")
}
