package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://localhost/shop")
	t.Setenv("PORT", "8080")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "postgres://localhost/shop", cfg.Database.URL)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Database.TxTimeout)
	assert.Equal(t, "order_events", cfg.RabbitMQ.Queue)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "")
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
jwt:
  secret: from-file
  ttl: 2h
database:
  tx_timeout: 750ms
redis:
  addr: localhost:6379
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 750*time.Millisecond, cfg.Database.TxTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_RequiresSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestLoad_MissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", "x")

	_, err := Load("does-not-exist.yaml")
	require.Error(t, err)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
