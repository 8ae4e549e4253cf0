package config

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultListenAddr  = ":8080"
	defaultDBPath      = "jsengine.db"
	defaultEngine      = "auto"
	defaultEvalTimeout = 30 * time.Second

	envListenAddr  = "JSENGINE_LISTEN_ADDR"
	envDBPath      = "JSENGINE_DB_PATH"
	envLogLevel    = "JSENGINE_LOG_LEVEL"
	envEngine      = "JSENGINE_ENGINE"
	envVerify      = "JSENGINE_VERIFY"
	envRhinoJar    = "JSENGINE_RHINO_JAR"
	envEvalTimeout = "JSENGINE_EVAL_TIMEOUT"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	DBPath     string
	LogLevel   slog.Level

	// Engine is the preferred engine name, or "auto".
	Engine string
	// Verify enables cross-engine verification. Debug logging turns it on
	// unless JSENGINE_VERIFY says otherwise.
	Verify      bool
	RhinoJar    string
	EvalTimeout time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	cfg := Config{
		ListenAddr:  defaultListenAddr,
		DBPath:      defaultDBPath,
		LogLevel:    slog.LevelInfo,
		Engine:      defaultEngine,
		EvalTimeout: defaultEvalTimeout,
	}

	if v := os.Getenv(envListenAddr); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(envDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envEngine); v != "" {
		cfg.Engine = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(envRhinoJar); v != "" {
		cfg.RhinoJar = v
	}
	if v := os.Getenv(envEvalTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.EvalTimeout = d
		}
	}

	cfg.Verify = cfg.LogLevel <= slog.LevelDebug
	if v := os.Getenv(envVerify); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Verify = b
		}
	}

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a structured JSON logger writing to w at the configured level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
