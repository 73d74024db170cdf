package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// String returns the trimmed env value or def when unset/blank.
func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Float(name string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func Bool(name string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "":
		return def
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

// Duration accepts Go duration strings ("750ms") or bare integers as seconds.
func Duration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

// Logged is String with a debug line saying whether the default was used.
func Logged(log *logger.Logger, name, def string) string {
	_, ok := os.LookupEnv(name)
	val := String(name, def)
	if log != nil {
		if ok {
			log.Debug("Environment variable found, using environment", "env_var", name)
		} else {
			log.Debug("Environment variable not found, using default", "env_var", name)
		}
	}
	return val
}
