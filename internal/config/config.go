// Package config loads the service settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"clinic-backend/internal/scheduling"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DBDriver       string   `mapstructure:"DB_DRIVER"`
	DatabaseDSN    string   `mapstructure:"DATABASE_DSN"`
	JWTSecret      string   `mapstructure:"JWT_SECRET"`
	JWTTTLHours    int      `mapstructure:"JWT_TTL_HOURS"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	ScheduleSlots  []string `mapstructure:"SCHEDULE_SLOTS"`
	Timezone       string   `mapstructure:"TIMEZONE"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`

	AppBaseURL          string `mapstructure:"APP_BASE_URL"`
	UploadDir           string `mapstructure:"UPLOAD_DIR"`
	FirebaseCredentials string `mapstructure:"FIREBASE_CREDENTIALS"`
	MidtransServerKey   string `mapstructure:"MIDTRANS_SERVER_KEY"`
	MidtransEnv         string `mapstructure:"MIDTRANS_ENV"`
	ReminderCron        string `mapstructure:"REMINDER_CRON"`
}

var keys = []string{
	"PORT", "ENV", "DB_DRIVER", "DATABASE_DSN", "JWT_SECRET", "JWT_TTL_HOURS",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "SCHEDULE_SLOTS", "TIMEZONE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM",
	"APP_BASE_URL", "UPLOAD_DIR", "FIREBASE_CREDENTIALS",
	"MIDTRANS_SERVER_KEY", "MIDTRANS_ENV", "REMINDER_CRON",
}

// Load reads .env when present, then the process environment. It does not
// validate; call Validate before serving.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("JWT_TTL_HOURS", 24)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("SCHEDULE_SLOTS", strings.Join(scheduling.DefaultSlots, ","))
	v.SetDefault("TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("APP_BASE_URL", "http://localhost:5173")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("MIDTRANS_ENV", "sandbox")
	v.SetDefault("REMINDER_CRON", "0 18 * * *")

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Comma separated lists arrive as one string from the environment.
	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.ScheduleSlots = splitList(v.GetString("SCHEDULE_SLOTS"))
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// Location resolves TIMEZONE against the embedded tz database.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.DBDriver != "mysql" && c.DBDriver != "postgres" {
		return fmt.Errorf("DB_DRIVER must be \"mysql\" or \"postgres\", got %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must have at least 32 characters in production")
	}
	if c.JWTTTLHours <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive, got %d", c.JWTTTLHours)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if len(c.ScheduleSlots) == 0 {
		return fmt.Errorf("SCHEDULE_SLOTS must list at least one slot")
	}
	for _, s := range c.ScheduleSlots {
		if _, err := time.Parse("15:04", s); err != nil || len(s) != 5 {
			return fmt.Errorf("SCHEDULE_SLOTS has malformed slot %q, use HH:MM", s)
		}
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	if c.MidtransEnv != "sandbox" && c.MidtransEnv != "production" {
		return fmt.Errorf("MIDTRANS_ENV must be \"sandbox\" or \"production\", got %q", c.MidtransEnv)
	}
	return nil
}
