package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port        string
	GinMode     string
	LogLevel    string
	CORSOrigins []string

	DBDriver string
	DBDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	ReservationDuration time.Duration
	PendingOrderTTL     time.Duration
	ReaperInterval      time.Duration
	ChangePollInterval  time.Duration
	OutboxRetention     time.Duration

	RateLimitPerMinute int
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:        getenv("PORT", "8080"),
		GinMode:     getenv("GIN_MODE", "debug"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getenv("CORS_ORIGINS", "http://localhost:5173")),

		DBDriver: getenv("DB_DRIVER", "mysql"),
		DBDSN:    getenv("DB_DSN", "root:root@tcp(127.0.0.1:3306)/restaurant?charset=utf8mb4&parseTime=True&loc=UTC"),

		JWTSecret: getenv("JWT_SECRET", "change-me"),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),
		SessionTTL:    getDuration("SESSION_TTL", 2*time.Hour),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getInt("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: getenv("MAIL_FROM", "Restaurant <no-reply@example.com>"),

		ReservationDuration: time.Duration(getInt("RESERVATION_DURATION_MINUTES", 90)) * time.Minute,
		PendingOrderTTL:     getDuration("PENDING_ORDER_TTL", 30*time.Minute),
		ReaperInterval:      getDuration("REAPER_INTERVAL", 5*time.Minute),
		ChangePollInterval:  getDuration("CHANGE_POLL_INTERVAL", 500*time.Millisecond),
		OutboxRetention:     getDuration("OUTBOX_RETENTION", 24*time.Hour),

		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 120),
	}
}

// InitDB opens the database named by DBDriver.
func InitDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBDSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	logLevel := logger.Warn
	if cfg.GinMode == "release" {
		logLevel = logger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	return db, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
