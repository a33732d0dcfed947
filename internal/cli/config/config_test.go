package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves the working directory so Load does not pick up a stray
// typegraph.yaml from the repository root.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 7180, cfg.Server.Port)
	assert.Equal(t, "localhost:7180", cfg.Server.Addr())
	assert.Equal(t, "", cfg.Auth.Secret)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "", cfg.Cache.RedisAddr)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "sqlite3", cfg.Store.Driver)
	assert.Equal(t, "typegraph.db", cfg.Store.DSN)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  host: 0.0.0.0
  port: 9000
store:
  driver: pgx
  dsn: postgres://localhost/typegraph
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "typegraph.yaml"), content, 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr())
	assert.Equal(t, "pgx", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/typegraph", cfg.Store.DSN)
}

func TestGetStoreDSN(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "typegraph.db", GetStoreDSN(cfg))

	t.Setenv("TYPEGRAPH_STORE_DSN", "postgres://env/typegraph")
	assert.Equal(t, "postgres://env/typegraph", GetStoreDSN(cfg))
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "port out of range",
			content: `
server:
  port: 70000
`,
		},
		{
			name: "unknown store driver",
			content: `
store:
  driver: oracle
`,
		},
		{
			name: "empty dsn",
			content: `
store:
  dsn: ""
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "typegraph.yaml"), []byte(tt.content), 0o644))
			chdir(t, dir)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
