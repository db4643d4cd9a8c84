package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv   string
	LogLevel string

	APIBase    string
	APIRPS     int
	APIRetries int
	APITimeout time.Duration

	RedisAddr      string
	RedisPass      string
	RedisSessionDB int
	RedisPrefsDB   int
	Namespace      string

	ExportDir string
	MySQLDSN  string // optional; empty disables the export log

	HTTPAddr      string
	MetricsAddr   string
	UploadWorkers int
}

// Load reads the environment, seeded from a .env file in the working
// directory when one exists. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env not loaded")
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:         env("APP_ENV", "prod"),
		LogLevel:       env("LOG_LEVEL", "info"),
		APIBase:        env("MOS_API_BASE_URL", "http://localhost:5000"),
		APIRPS:         atoi("MOS_API_RPS", 5),
		APIRetries:     atoi("MOS_API_RETRIES", 0),
		APITimeout:     time.Duration(atoi("MOS_API_TIMEOUT_SECONDS", 20)) * time.Second,
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisPass:      env("REDIS_PASSWORD", ""),
		RedisSessionDB: atoi("REDIS_SESSION_DB", 0),
		RedisPrefsDB:   atoi("REDIS_PREFS_DB", 1),
		Namespace:      env("MOS_NAMESPACE", "mosbookings"),
		ExportDir:      env("EXPORT_DIR", "reports"),
		MySQLDSN:       os.Getenv("MYSQL_DSN"),
		HTTPAddr:       env("HTTP_ADDR", "127.0.0.1:8080"),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
		UploadWorkers:  atoi("UPLOAD_WORKERS", 4),
	}
	if c.APIRetries < 0 {
		c.APIRetries = 0
	}
	if c.MySQLDSN == "" {
		log.Debug().Msg("MYSQL_DSN is empty, export history disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
