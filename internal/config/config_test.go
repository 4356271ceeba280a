package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blogicum.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9000"
  read_timeout: 2s
storage:
  driver: sqlite
  dsn: blog.db
pagination:
  page_size: 5
session:
  ttl: 1h
`), 0o644))

	t.Setenv("PORT", "7000")
	t.Setenv("MEDIA_DIR", "/tmp/media")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, 2*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "blog.db", cfg.Storage.DSN)
	assert.Equal(t, 5, cfg.Pagination.PageSize)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, "/tmp/media", cfg.Media.Dir)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	cfg := Default()
	cfg.Storage.Driver = DriverPostgres
	assert.ErrorContains(t, cfg.Validate(), "storage.dsn")

	cfg = Default()
	cfg.Storage.Driver = "mongo"
	cfg.Pagination.PageSize = 0
	err := cfg.Validate()
	assert.ErrorContains(t, err, "unknown storage driver")
	assert.ErrorContains(t, err, "page_size")
}
