package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, 4, cfg.BucketBits)
	assert.Equal(t, 128, cfg.PoolCapacity)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse([]byte("workers = 3\nbucket_bits = 6\npool_capacity = 32\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 6, cfg.BucketBits)
	assert.Equal(t, 32, cfg.PoolCapacity)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"negative workers", "workers = -1"},
		{"bucket bits too large", "bucket_bits = 40"},
		{"negative bucket bits", "bucket_bits = -2"},
		{"negative pool", "pool_capacity = -5"},
		{"malformed toml", "workers = = 3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "radix.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}
