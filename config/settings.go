package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendDatabase = "database"
	BackendSnapshot = "snapshot"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver     string
	DBURL        string
	QueueBackend string
	SnapshotPath string
	TimeZone     string

	JWTSecret   string
	JWTExpiry   time.Duration
	LoginPerMin int

	WebhookURL     string
	WebhookTimeout time.Duration

	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioFromNumber   string
	TwilioNotifyNumber string

	KafkaBrokers []string
	KafkaTopic   string

	RedisURL      string
	RedisAddr     string
	StatsCacheTTL time.Duration

	ReportCron  string
	CORSOrigins []string
	Currency    string
}

// Load reads .env when present and then the environment.
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	return Settings{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBURL:        os.Getenv("DB_URL"),
		QueueBackend: strings.ToLower(getEnv("QUEUE_BACKEND", BackendDatabase)),
		SnapshotPath: getEnv("SNAPSHOT_PATH", "data/queue.json"),
		TimeZone:     getEnv("TZ_NAME", "America/Sao_Paulo"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTExpiry:   time.Duration(getInt("JWT_EXPIRY_HOURS", 12)) * time.Hour,
		LoginPerMin: getInt("LOGIN_RATE_PER_MINUTE", 10),

		WebhookURL:     os.Getenv("WEBHOOK_URL"),
		WebhookTimeout: time.Duration(getInt("WEBHOOK_TIMEOUT_SECONDS", 10)) * time.Second,

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:   os.Getenv("TWILIO_FROM_NUMBER"),
		TwilioNotifyNumber: os.Getenv("TWILIO_NOTIFY_NUMBER"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "barberqueue.appointments"),

		RedisURL:      os.Getenv("REDIS_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		StatsCacheTTL: time.Duration(getInt("STATS_CACHE_TTL_SECONDS", 60)) * time.Second,

		ReportCron:  getEnv("REPORT_CRON", "0 21 * * *"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Currency:    getEnv("CURRENCY_SYMBOL", "R$"),
	}
}

// Location resolves TimeZone, falling back to UTC.
func (s Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		log.Printf("unknown TZ_NAME %q, using UTC", s.TimeZone)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
