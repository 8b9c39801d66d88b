package config

// Config is the root configuration for a frontdesk kiosk.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Store     StoreConfig     `yaml:"store,omitempty"`
	Dialogue  DialogueConfig  `yaml:"dialogue,omitempty"`
	Speech    SpeechConfig    `yaml:"speech,omitempty"`
	Directory DirectoryConfig `yaml:"directory,omitempty"`
	Audit     AuditConfig     `yaml:"audit,omitempty"`
	Metrics   MetricsConfig   `yaml:"metrics,omitempty"`
}

// GatewayConfig controls the gateway HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int         `yaml:"port,omitempty"`
	Bind           string      `yaml:"bind,omitempty"` // "auto" | "lan" | "loopback" | "custom"
	CustomBindHost string      `yaml:"customBindHost,omitempty"`
	Auth           GatewayAuth `yaml:"auth,omitempty"`
	TLS            GatewayTLS  `yaml:"tls,omitempty"`
	AllowedOrigins []string    `yaml:"allowedOrigins,omitempty"`
}

// GatewayAuth configures gateway authentication.
type GatewayAuth struct {
	Mode     string `yaml:"mode,omitempty"` // "none" | "token" | "password"
	Token    string `yaml:"token,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// GatewayTLS configures TLS for the gateway.
type GatewayTLS struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleLevel string `yaml:"consoleLevel,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}

// StoreConfig selects where the issued token is persisted.
type StoreConfig struct {
	Backend string      `yaml:"backend,omitempty"` // "memory" | "file" | "sqlite" | "redis"
	Path    string      `yaml:"path,omitempty"`
	Slot    string      `yaml:"slot,omitempty"`
	Redis   RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig configures the redis token backend.
type RedisConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	TTL      string `yaml:"ttl,omitempty"` // Go duration, e.g. "24h"; empty keeps the key forever
}

// DialogueConfig tunes the conversation runtime.
type DialogueConfig struct {
	ReplyDelayMs int    `yaml:"replyDelayMs,omitempty"`
	KioskName    string `yaml:"kioskName,omitempty"`
}

// SpeechConfig holds speech output settings.
type SpeechConfig struct {
	Enabled  bool    `yaml:"enabled,omitempty"`
	Lang     string  `yaml:"lang,omitempty"`
	Rate     float64 `yaml:"rate,omitempty"`
	Pitch    float64 `yaml:"pitch,omitempty"`
	Volume   float64 `yaml:"volume,omitempty"`
	PacingMs int     `yaml:"pacingMs,omitempty"`
}

// DirectoryConfig replaces the built-in doctor directory when Doctors is non-empty.
type DirectoryConfig struct {
	Doctors []DoctorEntry `yaml:"doctors,omitempty"`
}

// DoctorEntry is one configured physician.
type DoctorEntry struct {
	Name      string `yaml:"name"`
	Specialty string `yaml:"specialty"`
}

// AuditConfig controls the sqlite chat log.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// MetricsConfig controls prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled,omitempty"`
}
