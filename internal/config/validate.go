package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// TTLDuration parses the redis key TTL. An empty TTL means no expiry.
func (r RedisConfig) TTLDuration() (time.Duration, error) {
	if r.TTL == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0, &ConfigError{Message: "invalid redis ttl: " + err.Error()}
	}
	return d, nil
}

// ReplyDelay returns the typing delay as a duration.
func (d DialogueConfig) ReplyDelay() time.Duration {
	return time.Duration(d.ReplyDelayMs) * time.Millisecond
}

// CheckSection decodes raw and reports the validation issues under one
// top-level section. Issues in other sections are left for a full Validate.
func CheckSection(raw map[string]any, section string) error {
	c, err := FromRaw(raw)
	if err != nil {
		return err
	}
	var msgs []string
	for _, issue := range Validate(&c) {
		if issue.Path == section || strings.HasPrefix(issue.Path, section+".") {
			msgs = append(msgs, issue.String())
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return &ConfigError{Message: "not saved: " + strings.Join(msgs, "; ")}
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	add := func(path, format string, args ...any) {
		issues = append(issues, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	// Gateway validation
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		add("gateway.port", "port must be 0-65535, got %d", cfg.Gateway.Port)
	}

	validBinds := []string{"auto", "lan", "loopback", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		add("gateway.bind", "must be one of %v, got %q", validBinds, cfg.Gateway.Bind)
	}
	if cfg.Gateway.Bind == "custom" && cfg.Gateway.CustomBindHost == "" {
		add("gateway.customBindHost", "required when bind is custom")
	}

	validAuthModes := []string{"none", "token", "password"}
	if cfg.Gateway.Auth.Mode != "" && !slices.Contains(validAuthModes, cfg.Gateway.Auth.Mode) {
		add("gateway.auth.mode", "must be one of %v, got %q", validAuthModes, cfg.Gateway.Auth.Mode)
	}

	if cfg.Gateway.TLS.Enabled && (cfg.Gateway.TLS.CertPath == "" || cfg.Gateway.TLS.KeyPath == "") {
		add("gateway.tls", "certPath and keyPath are required when tls is enabled")
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		add("logging.level", "must be one of %v, got %q", validLogLevels, cfg.Logging.Level)
	}
	if cfg.Logging.ConsoleLevel != "" && !slices.Contains(validLogLevels, cfg.Logging.ConsoleLevel) {
		add("logging.consoleLevel", "must be one of %v, got %q", validLogLevels, cfg.Logging.ConsoleLevel)
	}

	validConsoleStyles := []string{"pretty", "compact", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		add("logging.consoleStyle", "must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle)
	}

	// Store validation
	validBackends := []string{"memory", "file", "sqlite", "redis"}
	if cfg.Store.Backend != "" && !slices.Contains(validBackends, cfg.Store.Backend) {
		add("store.backend", "must be one of %v, got %q", validBackends, cfg.Store.Backend)
	}
	if cfg.Store.Backend == "redis" {
		if cfg.Store.Redis.Addr == "" {
			add("store.redis.addr", "addr is required")
		}
		if cfg.Store.Redis.DB < 0 {
			add("store.redis.db", "db must not be negative, got %d", cfg.Store.Redis.DB)
		}
	}
	if ttl, err := cfg.Store.Redis.TTLDuration(); err != nil {
		add("store.redis.ttl", "%s", err.Error())
	} else if ttl < 0 {
		add("store.redis.ttl", "ttl must not be negative, got %s", cfg.Store.Redis.TTL)
	}

	// Dialogue validation
	if cfg.Dialogue.ReplyDelayMs < 0 {
		add("dialogue.replyDelayMs", "must not be negative, got %d", cfg.Dialogue.ReplyDelayMs)
	}

	// Speech validation
	if cfg.Speech.Rate < 0.1 || cfg.Speech.Rate > 10 {
		add("speech.rate", "must be 0.1-10, got %g", cfg.Speech.Rate)
	}
	if cfg.Speech.Pitch < 0 || cfg.Speech.Pitch > 2 {
		add("speech.pitch", "must be 0-2, got %g", cfg.Speech.Pitch)
	}
	if cfg.Speech.Volume < 0 || cfg.Speech.Volume > 1 {
		add("speech.volume", "must be 0-1, got %g", cfg.Speech.Volume)
	}
	if cfg.Speech.PacingMs < 0 {
		add("speech.pacingMs", "must not be negative, got %d", cfg.Speech.PacingMs)
	}

	// Directory validation (only if configured)
	seen := make(map[string]bool, len(cfg.Directory.Doctors))
	for i, d := range cfg.Directory.Doctors {
		path := fmt.Sprintf("directory.doctors[%d]", i)
		if strings.TrimSpace(d.Name) == "" {
			add(path+".name", "name is required")
		}
		if strings.TrimSpace(d.Specialty) == "" {
			add(path+".specialty", "specialty is required")
		}
		key := strings.ToLower(strings.TrimSpace(d.Name))
		if key != "" && seen[key] {
			add(path+".name", "duplicate doctor %q", d.Name)
		}
		seen[key] = true
	}

	return issues
}
