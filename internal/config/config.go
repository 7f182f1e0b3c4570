// Package config loads the proxy's settings from the environment once at
// startup and validates them before any request is served.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"khata-advisor/internal/integrations/groq"
)

// ErrMissingAPIKey means neither GROQ_API_KEY nor GROQ_API_KEY_PARAM is set.
var ErrMissingAPIKey = errors.New("config: GROQ_API_KEY or GROQ_API_KEY_PARAM must be set")

// publicKeyVar is a browser-bundle variable. A secret must never live there,
// so it is only inspected to warn about it.
const publicKeyVar = "NEXT_PUBLIC_GROQ_API_KEY"

type Config struct {
	// Exactly one of APIKey / APIKeyParam is used; APIKey wins.
	APIKey      string
	APIKeyParam string

	BaseURL string
	Model   string

	ChatLogTable string

	LogLevel  string
	LogFormat string

	Port int

	// PublicKeyExposed reports that NEXT_PUBLIC_GROQ_API_KEY is populated.
	PublicKeyExposed bool
}

// Load reads .env.local and .env when present, then the process environment.
// Variables already set in the environment are not overridden.
func Load() *Config {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) *Config {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	port, err := strconv.Atoi(get("PORT", "8080"))
	if err != nil {
		port = -1
	}
	return &Config{
		APIKey:           get("GROQ_API_KEY", ""),
		APIKeyParam:      get("GROQ_API_KEY_PARAM", ""),
		BaseURL:          get("GROQ_BASE_URL", groq.DefaultBaseURL),
		Model:            get("GROQ_MODEL", groq.DefaultModel),
		ChatLogTable:     get("CHAT_LOG_TABLE", ""),
		LogLevel:         strings.ToLower(get("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(get("LOG_FORMAT", "json")),
		Port:             port,
		PublicKeyExposed: get(publicKeyVar, "") != "",
	}
}

// Validate reports every problem at once. A missing key is wrapped so callers
// can match ErrMissingAPIKey. PORT is left to ValidateServer.
func (c *Config) Validate() error {
	var errs []error

	if c.APIKey == "" && c.APIKeyParam == "" {
		errs = append(errs, ErrMissingAPIKey)
	}
	if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("config: invalid GROQ_BASE_URL %q", c.BaseURL))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("config: invalid LOG_FORMAT %q, must be 'json' or 'text'", c.LogFormat))
	}
	return errors.Join(errs...)
}

// ValidateServer is Validate plus the checks that only matter when the
// process binds its own listener.
func (c *Config) ValidateServer() error {
	var portErr error
	if c.Port < 1 || c.Port > 65535 {
		portErr = errors.New("config: PORT must be between 1 and 65535")
	}
	return errors.Join(c.Validate(), portErr)
}

// NeedsAWS reports whether any configured feature talks to AWS.
func (c *Config) NeedsAWS() bool {
	return (c.APIKey == "" && c.APIKeyParam != "") || c.ChatLogTable != ""
}

// ParseLevel maps a LOG_LEVEL value to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: invalid LOG_LEVEL %q", level)
	}
}
