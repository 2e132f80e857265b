package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	LogLevel            string
	DBPath              string
	DBBusyTimeout       time.Duration
	ChangePollInterval  time.Duration
	LeaderLeaseTTL      time.Duration
	LeaderRenewInterval time.Duration
	SyncInterval        time.Duration
	CORSOrigins         []string
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load("config.env")

	cfg := &Config{
		Port:        getenv("APP_PORT", "8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		DBPath:      getenv("DB_PATH", "./data/financeflow.db"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "capacitor://localhost,http://localhost")),
	}

	durations := []struct {
		key  string
		def  time.Duration
		dest *time.Duration
	}{
		{"DB_BUSY_TIMEOUT", 5 * time.Second, &cfg.DBBusyTimeout},
		{"CHANGE_POLL_INTERVAL", 500 * time.Millisecond, &cfg.ChangePollInterval},
		{"LEADER_LEASE_TTL", 10 * time.Second, &cfg.LeaderLeaseTTL},
		{"LEADER_RENEW_INTERVAL", 3 * time.Second, &cfg.LeaderRenewInterval},
		{"SYNC_INTERVAL", 30 * time.Second, &cfg.SyncInterval},
	}
	for _, d := range durations {
		v, err := duration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.dest = v
	}
	if cfg.LeaderLeaseTTL > 0 && cfg.LeaderRenewInterval >= cfg.LeaderLeaseTTL {
		return nil, fmt.Errorf("LEADER_RENEW_INTERVAL (%s) must be shorter than LEADER_LEASE_TTL (%s)",
			cfg.LeaderRenewInterval, cfg.LeaderLeaseTTL)
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// duration accepts Go duration syntax; "0" disables the worker it configures.
func duration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
