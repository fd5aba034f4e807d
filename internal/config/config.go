package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field maps 1:1 to an env var; defaults mirror the legacy settings file.
type Config struct {
	// Server
	Port               int    `mapstructure:"PORT"`
	Env                string `mapstructure:"APP_ENV"` // development | production
	WorkerPoolSize     int    `mapstructure:"WORKER_POOL_SIZE"`
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RateLimitPerMinute int    `mapstructure:"RATE_LIMIT_PER_MINUTE"`

	// Storage
	StoreBackend string `mapstructure:"STORE_BACKEND"` // gorm | json
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	JSONDataFile string `mapstructure:"JSON_DATA_FILE"`

	// Redis (queue notifier + DLQ)
	RedisURL string `mapstructure:"REDIS_URL"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`

	// Notifications
	Notifier               string `mapstructure:"NOTIFIER"` // console | smtp | queue | kafka
	DefaultEmailRecipients string `mapstructure:"DEFAULT_EMAIL_RECIPIENTS"`
	EmailFrom              string `mapstructure:"EMAIL_FROM"`
	SMTPHost               string `mapstructure:"SMTP_HOST"`
	SMTPPort               int    `mapstructure:"SMTP_PORT"`
	SMTPUser               string `mapstructure:"SMTP_USER"`
	SMTPPassword           string `mapstructure:"SMTP_PASSWORD"`
	SMTPRatePerMinute      int    `mapstructure:"SMTP_RATE_PER_MINUTE"`
	KafkaBrokers           string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic             string `mapstructure:"KAFKA_TOPIC"`

	// Alerts
	AlertThresholds           string `mapstructure:"ALERT_THRESHOLDS"`
	PostExpiryDays            int    `mapstructure:"POST_EXPIRY_DAYS"`
	VencimentoAlertDays       int    `mapstructure:"VENCIMENTO_ALERT_DAYS"`
	ValorAltoCriticidade      string `mapstructure:"VALOR_ALTO_CRITICIDADE"`
	AlertHistoryRetentionDays int    `mapstructure:"ALERT_HISTORY_RETENTION_DAYS"`
	AlertHistoryMax           int    `mapstructure:"ALERT_HISTORY_MAX"`

	// Scheduler
	SchedulerEnabled   bool   `mapstructure:"SCHEDULER_ENABLED"`
	Timezone           string `mapstructure:"TIMEZONE"`
	DailyCheckHour     int    `mapstructure:"DAILY_CHECK_HOUR"`
	DailyCheckMinute   int    `mapstructure:"DAILY_CHECK_MINUTE"`
	WeeklyCheckWeekday int    `mapstructure:"WEEKLY_CHECK_WEEKDAY"` // 0 = Monday
	WeeklyCheckHour    int    `mapstructure:"WEEKLY_CHECK_HOUR"`
	WeeklyCheckMinute  int    `mapstructure:"WEEKLY_CHECK_MINUTE"`
	MonthlyCheckDay    int    `mapstructure:"MONTHLY_CHECK_DAY"`
	MonthlyCheckHour   int    `mapstructure:"MONTHLY_CHECK_HOUR"`
	MonthlyCheckMinute int    `mapstructure:"MONTHLY_CHECK_MINUTE"`

	// Business
	ReportStoragePath string `mapstructure:"REPORT_STORAGE_PATH"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	SetDefaults(v)

	// Optional .env file for local development; missing is fine
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults registers every default on v. Exported so tests can build a
// Config without touching the process environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("WORKER_POOL_SIZE", 3)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 600)

	v.SetDefault("STORE_BACKEND", "gorm")
	v.SetDefault("DATABASE_URL", "data/atas.db")
	v.SetDefault("JSON_DATA_FILE", "data/atas.json")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRATION_HOURS", 8)

	v.SetDefault("NOTIFIER", "console")
	v.SetDefault("DEFAULT_EMAIL_RECIPIENTS", "diatu@trf1.jus.br,seae1@trf1.jus.br")
	v.SetDefault("EMAIL_FROM", "atas@trf1.jus.br")
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_RATE_PER_MINUTE", 30)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_TOPIC", "atas.notificacoes")

	v.SetDefault("ALERT_THRESHOLDS", "90,60,30,15,7,1,0")
	v.SetDefault("POST_EXPIRY_DAYS", 30)
	v.SetDefault("VENCIMENTO_ALERT_DAYS", 90)
	v.SetDefault("VALOR_ALTO_CRITICIDADE", "1000000")
	v.SetDefault("ALERT_HISTORY_RETENTION_DAYS", 90)
	v.SetDefault("ALERT_HISTORY_MAX", 1000)

	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("DAILY_CHECK_HOUR", 9)
	v.SetDefault("DAILY_CHECK_MINUTE", 0)
	v.SetDefault("WEEKLY_CHECK_WEEKDAY", 0)
	v.SetDefault("WEEKLY_CHECK_HOUR", 8)
	v.SetDefault("WEEKLY_CHECK_MINUTE", 0)
	v.SetDefault("MONTHLY_CHECK_DAY", 1)
	v.SetDefault("MONTHLY_CHECK_HOUR", 7)
	v.SetDefault("MONTHLY_CHECK_MINUTE", 0)

	v.SetDefault("REPORT_STORAGE_PATH", "data/relatorios")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
}

// Validate rejects settings that would only fail later at runtime.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "gorm", "json":
	default:
		return fmt.Errorf("config: STORE_BACKEND %q inválido (gorm|json)", c.StoreBackend)
	}
	switch c.Notifier {
	case "console", "smtp", "queue", "kafka":
	default:
		return fmt.Errorf("config: NOTIFIER %q inválido (console|smtp|queue|kafka)", c.Notifier)
	}
	if _, err := c.Thresholds(); err != nil {
		return err
	}
	if _, err := c.ValorAlto(); err != nil {
		return err
	}
	if c.WeeklyCheckWeekday < 0 || c.WeeklyCheckWeekday > 6 {
		return fmt.Errorf("config: WEEKLY_CHECK_WEEKDAY deve estar entre 0 e 6")
	}
	if c.MonthlyCheckDay < 1 || c.MonthlyCheckDay > 28 {
		return fmt.Errorf("config: MONTHLY_CHECK_DAY deve estar entre 1 e 28")
	}
	return nil
}

// Recipients splits DEFAULT_EMAIL_RECIPIENTS.
func (c *Config) Recipients() []string {
	return splitList(c.DefaultEmailRecipients)
}

// Origins splits CORS_ALLOWED_ORIGINS.
func (c *Config) Origins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// Brokers splits KAFKA_BROKERS.
func (c *Config) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

// Thresholds parses ALERT_THRESHOLDS ("90,60,30,15,7,1,0").
func (c *Config) Thresholds() ([]int, error) {
	parts := splitList(c.AlertThresholds)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("config: ALERT_THRESHOLDS contém valor inválido %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

// ValorAlto parses VALOR_ALTO_CRITICIDADE.
func (c *Config) ValorAlto() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(c.ValorAltoCriticidade))
	if err != nil {
		return decimal.Zero, fmt.Errorf("config: VALOR_ALTO_CRITICIDADE inválido: %w", err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
