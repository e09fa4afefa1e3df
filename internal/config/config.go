package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process-wide runtime configuration, read once at
// startup from the environment (a local .env is honored when present).
type Config struct {
	Addr       string        // HTTP listen address
	CodeLen    int           // room code length
	LeaveGrace time.Duration // cleanup grace after an explicit leave
	DropGrace  time.Duration // cleanup grace after a connection drop
}

func Load() Config {
	_ = godotenv.Load() // a missing .env is fine

	return Config{
		Addr:       envString("JMD_ADDR", ":8080"),
		CodeLen:    envInt("JMD_CODE_LEN", 6),
		LeaveGrace: envDuration("JMD_LEAVE_GRACE", 5*time.Minute),
		DropGrace:  envDuration("JMD_DROP_GRACE", 30*time.Second),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
