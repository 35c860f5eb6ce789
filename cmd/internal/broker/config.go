package broker

import (
	"os"
	"strconv"
	"strings"
)

// Config controls broker behavior.
type Config struct {
	// DefaultApp is the app-name context assigned to sessions when the
	// register/login request carries no ?app= query.
	DefaultApp string

	// TrustProxy enables X-Forwarded-For / X-Real-IP as the session's
	// originating client IP.
	TrustProxy bool

	// MaxBodyBytes bounds register/login form bodies.
	MaxBodyBytes int64
}

// LoadConfigFromEnv loads broker config from environment variables with
// safe defaults.
func LoadConfigFromEnv() Config {
	cfg := Config{
		DefaultApp:   envString("GATE_BROKER_DEFAULT_APP", "broker"),
		TrustProxy:   envBool("GATE_BROKER_TRUST_PROXY", false),
		MaxBodyBytes: envInt64("GATE_BROKER_MAX_BODY_BYTES", 1<<20), // 1 MiB
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	return cfg
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
