package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-gorm-messenger/internal/core/auth"
)

const sampleYAML = `
app:
  name: messenger
  http:
    host: 0.0.0.0
    port: 9090
  admin:
    port: 9091
log:
  level: debug
  json: true
jwt:
  secret: file-secret
  algorithm: HS512
  issuer: messenger
  accessTokenTTLMin: 15
db:
  driver: postgres
  dsn: postgres://u:p@localhost:5432/app
  maxOpenConns: 20
redis:
  addr: localhost:6379
  messageCacheTTLSec: 5
seed:
  onStartup: true
  adminPassword: Adm1n!pass
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_FromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.HTTP.Port)
	assert.Equal(t, 9091, cfg.App.Admin.Port)
	assert.Equal(t, 300, cfg.App.HTTP.MaxInFlight)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, "HS512", cfg.JWT.Algorithm)
	assert.Equal(t, 15, cfg.JWT.AccessTokenTTLMin)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 20, cfg.DB.MaxOpenConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5, cfg.Redis.MessageCacheTTLSec)
	assert.True(t, cfg.Seed.OnStartup)
	assert.Equal(t, "admin@example.com", cfg.Seed.AdminEmail)
	assert.Equal(t, "Adm1n!pass", cfg.Seed.AdminPassword)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "env-secret")
	t.Setenv("APP_JWT_ACCESSTOKENTTLMIN", "45")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 45, cfg.JWT.AccessTokenTTLMin)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("APP_JWT_SECRET", "only-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "only-env", cfg.JWT.Secret)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 30, cfg.JWT.AccessTokenTTLMin)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, 8080, cfg.App.HTTP.Port)
}

func TestLoad_MissingSecretIsFatal(t *testing.T) {
	_, err := Load(writeConfig(t, "jwt:\n  secret: \"\"\n"))
	assert.ErrorIs(t, err, ErrNoJWTSecret)
}

func TestLoad_BadAlgorithm(t *testing.T) {
	_, err := Load(writeConfig(t, "jwt:\n  secret: s\n  algorithm: RS256\n"))
	assert.ErrorIs(t, err, auth.ErrUnsupportedAlg)
}

func TestLoad_BadTTL(t *testing.T) {
	_, err := Load(writeConfig(t, "jwt:\n  secret: s\n  accessTokenTTLMin: 0\n"))
	assert.Error(t, err)
}

func TestLoad_BrokenYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "jwt: [unterminated\n"))
	assert.Error(t, err)
}
