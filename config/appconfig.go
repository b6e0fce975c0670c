package config

import (
	"fmt"
	"time"
)

// AppConfig is the full mailgate configuration.
type AppConfig struct {
	SMTP    SMTPConfig    `toml:"smtp" json:"smtp"`
	App     AppSettings   `toml:"app" json:"app"`
	Audit   AuditConfig   `toml:"audit" json:"audit"`
	Metrics MetricsConfig `toml:"metrics" json:"metrics"`
}

// SMTPConfig describes the outbound relay account. The password is never
// serialized into state snapshots.
type SMTPConfig struct {
	Username string `toml:"username" env:"SMTP_USERNAME" env-required:"true" json:"username"`
	Password string `toml:"password" env:"SMTP_PASSWORD" env-required:"true" json:"-"`
	Server   string `toml:"server" env:"SMTP_SERVER" env-required:"true" json:"server"`
	Port     int    `toml:"port" env:"SMTP_PORT" env-default:"587" json:"port"`
	To       string `toml:"to" env:"SMTP_TO" env-required:"true" json:"to"`
	From     string `toml:"from" env:"SMTP_FROM" env-required:"true" json:"from"`
}

type AppSettings struct {
	Listen              string `toml:"listen" env:"MAILGATE_LISTEN" env-default:"0.0.0.0:1827" json:"listen"`
	LoopIntervalSeconds int    `toml:"loop_interval_seconds" env:"MAILGATE_LOOP_INTERVAL" env-default:"10" json:"loop_interval_seconds"`
	RateLimit           int    `toml:"rate_limit" env:"MAILGATE_RATE_LIMIT" env-default:"5" json:"rate_limit"`
	QueueTTLSeconds     int    `toml:"queue_ttl_seconds" env:"MAILGATE_QUEUE_TTL" env-default:"300" json:"queue_ttl_seconds"`
	LockTimeoutMS       int    `toml:"lock_timeout_ms" env:"MAILGATE_LOCK_TIMEOUT_MS" env-default:"500" json:"lock_timeout_ms"`
	// ErrorLogLimit bounds the error ledger; 0 keeps it unbounded.
	ErrorLogLimit int `toml:"error_log_limit" env:"MAILGATE_ERROR_LOG_LIMIT" env-default:"0" json:"error_log_limit"`
	// StrictReload makes a failed config reload fatal instead of keeping
	// the previous configuration.
	StrictReload bool   `toml:"strict_reload" env:"MAILGATE_STRICT_RELOAD" env-default:"false" json:"strict_reload"`
	StatePath    string `toml:"state_path" env:"MAILGATE_STATE_PATH" env-default:"./mailgate.state.json" json:"state_path"`
}

// AuditConfig enables the AMQP audit publisher when URL is set.
type AuditConfig struct {
	URL        string `toml:"url" env:"MAILGATE_AMQP_URL" env-default:"" json:"url"`
	Exchange   string `toml:"exchange" env:"MAILGATE_AMQP_EXCHANGE" env-default:"mailgate.audit" json:"exchange"`
	RoutingKey string `toml:"routing_key" env:"MAILGATE_AMQP_ROUTING_KEY" env-default:"" json:"routing_key"`
}

// MetricsConfig enables the prometheus listener when Listen is set.
type MetricsConfig struct {
	Listen string `toml:"listen" env:"MAILGATE_METRICS_LISTEN" env-default:"" json:"listen"`
}

func (a AppSettings) LoopInterval() time.Duration {
	return time.Duration(a.LoopIntervalSeconds) * time.Second
}

func (a AppSettings) QueueTTL() time.Duration {
	return time.Duration(a.QueueTTLSeconds) * time.Second
}

func (a AppSettings) LockTimeout() time.Duration {
	return time.Duration(a.LockTimeoutMS) * time.Millisecond
}

// String renders the configuration for the startup log with the SMTP
// password masked.
func (c *AppConfig) String() string {
	return fmt.Sprintf(
		"smtp: %s@%s:%d from=%s to=%s password=******** | app: listen=%s interval=%ds rate_limit=%d ttl=%ds error_log_limit=%d strict_reload=%v | audit: %s | metrics: %s",
		c.SMTP.Username, c.SMTP.Server, c.SMTP.Port, c.SMTP.From, c.SMTP.To,
		c.App.Listen, c.App.LoopIntervalSeconds, c.App.RateLimit,
		c.App.QueueTTLSeconds, c.App.ErrorLogLimit, c.App.StrictReload,
		orDisabled(c.Audit.URL != "", c.Audit.Exchange), orDisabled(c.Metrics.Listen != "", c.Metrics.Listen),
	)
}

func orDisabled(enabled bool, s string) string {
	if !enabled {
		return "disabled"
	}
	return s
}
