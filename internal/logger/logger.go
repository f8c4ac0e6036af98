package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dkazlou/flint/internal/config"
)

// Config is the subset of app config the logger needs.
type Config struct {
	Level      string
	JSON       bool
	Component  string
	WithSource bool
}

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// InitFromConfig initializes the global logger from app config.
func InitFromConfig(c *config.Config) {
	if c == nil {
		Init(nil)
		return
	}
	Init(&Config{
		Level:      c.Log.Level,
		JSON:       strings.EqualFold(c.Log.Format, "json"),
		Component:  c.Log.Component,
		WithSource: c.Log.Source,
	})
}

// Init sets up the global logger. Safe to call multiple times; a nil config
// yields a text logger at info level.
func Init(c *Config) {
	if c == nil {
		c = &Config{Level: "info"}
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(c.Level),
		AddSource: c.WithSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && !c.JSON {
				return slog.String(slog.TimeKey, time.Now().Format("2006-01-02 15:04:05"))
			}
			return a
		},
	}

	var handler slog.Handler
	if c.JSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	base := slog.New(handler)
	if c.Component != "" {
		base = base.With("component", c.Component)
	}

	mu.Lock()
	logger = base
	mu.Unlock()
}

// L returns the global logger, initializing the default one on first use.
// Always returns a non-nil instance.
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		Init(nil)
		mu.RLock()
		l = logger
		mu.RUnlock()
	}
	return l
}

// With creates a child logger with additional attributes.
func With(args ...any) *slog.Logger { return L().With(args...) }

func parseLevel(s string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
