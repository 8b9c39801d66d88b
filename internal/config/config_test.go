package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, DefaultPort, cfg.Gateway.Port)
	assert.Equal(t, "loopback", cfg.Gateway.Bind)
	assert.Equal(t, "token", cfg.Gateway.Auth.Mode)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, 1000, cfg.Dialogue.ReplyDelayMs)
	assert.Equal(t, time.Second, cfg.Dialogue.ReplyDelay())
	assert.Equal(t, 0.9, cfg.Speech.Rate)
	assert.True(t, cfg.Speech.Enabled)
	assert.True(t, cfg.Audit.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Directory.Doctors)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Gateway.Port)
	assert.Equal(t, "file", cfg.Store.Backend)
}

func TestLoadValidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	yaml := `
gateway:
  port: 9999
  bind: lan
  auth:
    mode: password
    password: secret123
  allowedOrigins:
    - https://kiosk.example
logging:
  level: debug
  consoleStyle: json
store:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
    ttl: 12h
dialogue:
  replyDelayMs: 0
  kioskName: Lobby
speech:
  enabled: false
  rate: 1.2
directory:
  doctors:
    - name: Dr. Asha Rao
      specialty: Cardiology
metrics:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Gateway.Port)
	assert.Equal(t, "lan", cfg.Gateway.Bind)
	assert.Equal(t, "password", cfg.Gateway.Auth.Mode)
	assert.Equal(t, "secret123", cfg.Gateway.Auth.Password)
	assert.Equal(t, []string{"https://kiosk.example"}, cfg.Gateway.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.ConsoleStyle)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	ttl, err := cfg.Store.Redis.TTLDuration()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, ttl)
	assert.Equal(t, 0, cfg.Dialogue.ReplyDelayMs)
	assert.Equal(t, "Lobby", cfg.Dialogue.KioskName)
	assert.False(t, cfg.Speech.Enabled)
	assert.Equal(t, 1.2, cfg.Speech.Rate)
	assert.Equal(t, "en-US", cfg.Speech.Lang)
	require.Len(t, cfg.Directory.Doctors, 1)
	assert.Equal(t, DoctorEntry{Name: "Dr. Asha Rao", Specialty: "Cardiology"}, cfg.Directory.Doctors[0])
	assert.False(t, cfg.Metrics.Enabled)
	assert.True(t, cfg.Audit.Enabled)
	assert.Empty(t, Validate(&cfg))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{invalid yaml"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FRONTDESK_GATEWAY_PORT", "12345")
	t.Setenv("FRONTDESK_LOG_LEVEL", "TRACE")
	t.Setenv("FRONTDESK_STORE_BACKEND", "SQLite")
	t.Setenv("FRONTDESK_REPLY_DELAY_MS", "250")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.Gateway.Port)
	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 250, cfg.Dialogue.ReplyDelayMs)
}

func TestLoadExpandsSecrets(t *testing.T) {
	t.Setenv("KIOSK_GW_TOKEN", "tok-123")
	t.Setenv("KIOSK_REDIS_PW", "pw-456")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
gateway:
  auth:
    token: ${KIOSK_GW_TOKEN}
store:
  redis:
    password: ${KIOSK_REDIS_PW}
dialogue:
  kioskName: ${NOT_EXPANDED}
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", cfg.Gateway.Auth.Token)
	assert.Equal(t, "pw-456", cfg.Store.Redis.Password)
	assert.Equal(t, "${NOT_EXPANDED}", cfg.Dialogue.KioskName)
}

func TestExpandEnvVars_UnsetLeftAlone(t *testing.T) {
	assert.Equal(t, "${FRONTDESK_SURELY_UNSET_VAR}", expandEnvVars("${FRONTDESK_SURELY_UNSET_VAR}"))
	assert.Equal(t, "plain", expandEnvVars("plain"))
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	raw := map[string]any{
		"store": map[string]any{
			"backend": "sqlite",
		},
	}
	require.NoError(t, SaveRaw(path, raw))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)

	val, ok := GetValueAtPath(loaded, []string{"store", "backend"})
	assert.True(t, ok)
	assert.Equal(t, "sqlite", val)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
}

func TestLoadRaw_MissingAndEmpty(t *testing.T) {
	raw, err := LoadRaw(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, raw)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	raw, err = LoadRaw(path)
	require.NoError(t, err)
	assert.NotNil(t, raw)
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Message: "bad"}
	assert.Equal(t, "config: bad", err.Error())
}

func TestFromRaw(t *testing.T) {
	cfg, err := FromRaw(map[string]any{
		"dialogue": map[string]any{"replyDelayMs": 250},
		"store":    map[string]any{"backend": "redis"},
	})
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Dialogue.ReplyDelayMs)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, DefaultKioskName, cfg.Dialogue.KioskName)

	_, err = FromRaw(map[string]any{"gateway": map[string]any{"port": "many"}})
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestCheckSection(t *testing.T) {
	raw := map[string]any{
		"dialogue": map[string]any{"replyDelayMs": -5},
		"speech":   map[string]any{"rate": 1.0},
	}

	err := CheckSection(raw, "dialogue")
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "dialogue.replyDelayMs")

	assert.NoError(t, CheckSection(raw, "speech"))
}

func TestCloneRaw_IsDeep(t *testing.T) {
	raw := map[string]any{
		"gateway": map[string]any{"allowedOrigins": []any{"http://lobby.local"}},
	}
	c := CloneRaw(raw)
	SetValueAtPath(c, []string{"gateway", "port"}, 9000)
	c["gateway"].(map[string]any)["allowedOrigins"].([]any)[0] = "http://desk.local"

	_, found := GetValueAtPath(raw, []string{"gateway", "port"})
	assert.False(t, found)
	origins, _ := GetValueAtPath(raw, []string{"gateway", "allowedOrigins"})
	assert.Equal(t, []any{"http://lobby.local"}, origins)
}
