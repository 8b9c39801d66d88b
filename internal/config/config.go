package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	DefaultPort         = 18790
	DefaultReplyDelayMs = 1000
	DefaultKioskName    = "City Hospital"
)

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			Port: DefaultPort,
			Bind: "loopback",
			Auth: GatewayAuth{
				Mode: "token",
			},
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleLevel: "info",
			ConsoleStyle: "pretty",
		},
		Store: StoreConfig{
			Backend: "file",
		},
		Dialogue: DialogueConfig{
			ReplyDelayMs: DefaultReplyDelayMs,
			KioskName:    DefaultKioskName,
		},
		Speech: SpeechConfig{
			Enabled: true,
			Lang:    "en-US",
			Rate:    0.9,
			Pitch:   1,
			Volume:  1,
		},
		Audit: AuditConfig{
			Enabled: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
