package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const devJWTSecret = "dev-only-rentbroker-secret-change-me"

type Config struct {
	DBUrl              string
	Port               string
	JWTSecret          string
	JWTTTL             time.Duration
	LogLevel           string
	LogPretty          bool
	CORSAllowedOrigins []string
	BcryptCost         int

	// Warnings collected while loading; the logger does not exist yet at that point.
	Warnings []Warning
}

type Warning struct {
	Key     string
	Value   string
	Message string
}

// LogWarnings reports what LoadConfig fell back on.
func (c Config) LogWarnings(log zerolog.Logger) {
	for _, w := range c.Warnings {
		e := log.Warn()
		if w.Key != "" {
			e = e.Str("key", w.Key)
		}
		if w.Value != "" {
			e = e.Str("value", w.Value)
		}
		e.Msg(w.Message)
	}
}

type loader struct {
	warnings []Warning
}

func (l *loader) warn(key, value, msg string) {
	l.warnings = append(l.warnings, Warning{Key: key, Value: value, Message: msg})
}

func LoadConfig() Config {
	// a missing .env is normal; values come from the environment
	_ = godotenv.Load()

	l := &loader{}
	cfg := Config{
		DBUrl:              os.Getenv("DB_URL"),
		Port:               getEnv("PORT", "8080"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		JWTTTL:             l.getDuration("JWT_TTL", time.Hour),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPretty:          l.getBool("LOG_PRETTY", false),
		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		BcryptCost:         l.getInt("BCRYPT_COST", bcrypt.DefaultCost),
	}

	if cfg.JWTSecret == "" {
		l.warn("JWT_SECRET", "", "JWT_SECRET is not set, falling back to the development secret")
		cfg.JWTSecret = devJWTSecret
	}

	cfg.Warnings = l.warnings
	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (l *loader) getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		l.warn(key, v, "Invalid duration, using default")
		return fallback
	}
	return d
}

func (l *loader) getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.warn(key, v, "Invalid boolean, using default")
		return fallback
	}
	return b
}

func (l *loader) getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.warn(key, v, "Invalid integer, using default")
		return fallback
	}
	return n
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
