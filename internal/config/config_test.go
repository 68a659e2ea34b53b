package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/fintrack-client/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FINTRACK_API_URL", "")
	t.Setenv("FINTRACK_STORAGE", "")
	t.Setenv("FINTRACK_REFRESH_MAX_TRIES", "")

	c, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultAPIURL, c.GetAPIURL())
	assert.Equal(t, config.StorageFile, c.GetStorageBackend())
	assert.Equal(t, uint(3), c.GetRefreshMaxTries())
	assert.Equal(t, 30*time.Second, c.GetHTTPTimeout())
	assert.True(t, c.GetCoalesceRefresh())
	assert.False(t, c.GetHTTPCacheEnabled())
	assert.Equal(t, config.DefaultCallbackPort, c.GetCallbackPort())
}

func TestLoad_FileThenEnvThenOverride(t *testing.T) {
	path := writeConfigFile(t, `
api_url: "http://file.example/api/v1/"
storage: "memory"
refresh_max_tries: "5"
valkey_prefix: "from-file"
`)

	t.Setenv("FINTRACK_API_URL", "")
	t.Setenv("FINTRACK_STORAGE", "")
	t.Setenv("FINTRACK_REFRESH_MAX_TRIES", "")
	t.Setenv("FINTRACK_VALKEY_PREFIX", "")

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file.example/api/v1", c.GetAPIURL())
	assert.Equal(t, config.StorageMemory, c.GetStorageBackend())
	assert.Equal(t, uint(5), c.GetRefreshMaxTries())
	assert.Equal(t, "from-file", c.GetValkeyPrefix())

	t.Setenv("FINTRACK_API_URL", "http://env.example/api/v1")
	t.Setenv("FINTRACK_STORAGE", "valkey")
	c, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example/api/v1", c.GetAPIURL())
	assert.Equal(t, config.StorageValkey, c.GetStorageBackend())

	c, err = config.Load(path, config.WithAPIURL("http://flag.example"), config.WithStorageBackend("file"))
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example", c.GetAPIURL())
	assert.Equal(t, config.StorageFile, c.GetStorageBackend())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("FINTRACK_STORAGE", "floppy")
	t.Setenv("FINTRACK_REFRESH_MAX_TRIES", "zero")
	t.Setenv("FINTRACK_HTTP_TIMEOUT", "soon")
	t.Setenv("FINTRACK_CALLBACK_PORT", "99999")

	c, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.StorageFile, c.GetStorageBackend())
	assert.Equal(t, uint(3), c.GetRefreshMaxTries())
	assert.Equal(t, 30*time.Second, c.GetHTTPTimeout())
	assert.Equal(t, config.DefaultCallbackPort, c.GetCallbackPort())
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "api_url: [unterminated")
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestFakeAPI_Port(t *testing.T) {
	t.Setenv("PORT", "4000")
	c, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":4000", c.GetPort())
}

func TestFakeAPI_OriginsAndRotation(t *testing.T) {
	t.Setenv("FAKEAPI_ALLOWED_ORIGINS", " http://localhost:5173, ,https://app.example.com")
	t.Setenv("FAKEAPI_ROTATE_REFRESH", "false")

	var c config.FakeAPI
	assert.Equal(t, []string{"http://localhost:5173", "https://app.example.com"}, c.GetAllowedOrigins())
	assert.False(t, c.GetRotateRefreshTokens())
}
