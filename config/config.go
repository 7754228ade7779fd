package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadEnv reads .env into the process environment when the file exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found; using system environment")
	}
}

type Config struct {
	Port string `env:"PORT" envDefault:"3001"`

	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"` // postgres | sqlite
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME" envDefault:"comlab"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"comlab.sqlite3"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPwd  string `env:"REDIS_PASSWORD"`

	WebOrigin  string   `env:"WEB_ORIGIN" envDefault:"http://localhost:5173"`
	RPID       string   `env:"RP_ID" envDefault:"localhost"`
	RPOrigins  []string `env:"RP_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	SessionTTL time.Duration
	TTLSeconds int           `env:"SESSION_TTL_SECONDS" envDefault:"600"`
	AppTTL     time.Duration `env:"APP_SESSION_TTL" envDefault:"24h"`

	AdminEmails    []string `env:"ADMIN_EMAILS" envSeparator:","`
	BootstrapEmail string   `env:"BOOTSTRAP_ADMIN_EMAIL"`

	JWTSecret string        `env:"JWT_SECRET"`
	LiveTTL   time.Duration `env:"LIVE_TOKEN_TTL" envDefault:"15m"`

	UploadDir     string `env:"UPLOAD_DIR" envDefault:"uploads"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:3001"`

	SubmitRate  float64 `env:"SUBMIT_RATE" envDefault:"0.2"` // tokens per second per user
	SubmitBurst int     `env:"SUBMIT_BURST" envDefault:"3"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"` // console | json

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     string `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
	AppName  string `env:"APP_NAME" envDefault:"ComLab Requests"`
}

// Enabled is false in dev setups where invite links are only logged.
func (s SMTPConfig) Enabled() bool { return s.Host != "" && (s.Username != "" || s.From != "") }

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.SessionTTL = time.Duration(cfg.TTLSeconds) * time.Second
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 10 * time.Minute
	}
	cfg.AdminEmails = normalizeList(cfg.AdminEmails, true)
	cfg.RPOrigins = normalizeList(cfg.RPOrigins, false)
	cfg.BootstrapEmail = strings.ToLower(strings.TrimSpace(cfg.BootstrapEmail))
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// DSN builds the postgres DSN from parts unless DATABASE_URL is set.
func (c Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func (c Config) SecureCookies() bool { return strings.HasPrefix(c.WebOrigin, "https://") }

func normalizeList(in []string, lower bool) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if lower {
			s = strings.ToLower(s)
		}
		out = append(out, s)
	}
	return out
}
