package quick

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quickkv/quickkv/lib/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already normalized", "db.qkv", "db.qkv"},
		{"missing extension", "mydata", "mydata.qkv"},
		{"foreign extension", "mydata.db", "mydata.qkv"},
		{"directory path", "data/", "data/db.qkv"},
		{"nested missing extension", "data/store/app", "data/store/app.qkv"},
		{"dotted dir no extension", "./data/app", "./data/app.qkv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.in))
		})
	}
}

func TestPreparePathCreatesParents(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "store")

	got, err := preparePath(nested)
	require.NoError(t, err)
	assert.Equal(t, nested+".qkv", got)

	info, err := os.Stat(filepath.Join(dir, "a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "db.qkv", cfg.Path)
	assert.Equal(t, kv.RuntimeDisk, cfg.Runtime)
	assert.Zero(t, cfg.DefaultTTL)
}

func TestWithDefaultsRejectsBadLogLevel(t *testing.T) {
	cfg := Config{Logging: LogConfig{Enabled: true, Level: "verbose"}}
	_, _, err := cfg.withDefaults()
	require.Error(t, err)
}
