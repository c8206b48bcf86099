// Package config resolves toolhost settings from the environment.
//
// Every knob has a TOOLHOST_* variable; cmd/main.go loads a .env file first so
// local setups can keep their settings next to the checkout.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultListenAddr      = "127.0.0.1:8765"
	DefaultShell           = "/bin/sh"
	DefaultFetchTimeout    = 30 * time.Second
	DefaultCommandTimeout  = time.Minute
	DefaultMaxRequestBytes = 4 << 20
)

// Config carries the runtime settings for the toolhost server.
type Config struct {
	// ListenAddr is the host:port the HTTP surface binds to.
	ListenAddr string
	// WorkspaceRoot confines every file tool; paths outside it are rejected.
	WorkspaceRoot string
	// Shell is the only interpreter run_command will execute.
	Shell string
	// AuthToken enables bearer-token auth on the HTTP surface when non-empty.
	AuthToken string
	// SessionDB enables the sqlite session archive when non-empty.
	SessionDB string
	// FetchTimeout bounds fetch tool requests unless the call overrides it.
	FetchTimeout time.Duration
	// CommandTimeout bounds run_command unless the call overrides it.
	CommandTimeout time.Duration
	// MaxRequestBytes caps HTTP request bodies.
	MaxRequestBytes int64
	// LogLevel is the minimum severity written to the log.
	LogLevel string
}

// FromEnv builds a Config from TOOLHOST_* environment variables, falling back
// to defaults. The workspace root defaults to the current working directory.
func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:      envOr("TOOLHOST_ADDR", DefaultListenAddr),
		WorkspaceRoot:   strings.TrimSpace(os.Getenv("TOOLHOST_ROOT")),
		Shell:           envOr("TOOLHOST_SHELL", DefaultShell),
		AuthToken:       strings.TrimSpace(os.Getenv("TOOLHOST_TOKEN")),
		SessionDB:       strings.TrimSpace(os.Getenv("TOOLHOST_SESSION_DB")),
		FetchTimeout:    DefaultFetchTimeout,
		CommandTimeout:  DefaultCommandTimeout,
		MaxRequestBytes: DefaultMaxRequestBytes,
		LogLevel:        envOr("TOOLHOST_LOG_LEVEL", "info"),
	}

	if cfg.WorkspaceRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("determine working directory: %w", err)
		}
		cfg.WorkspaceRoot = wd
	}

	var err error
	if cfg.FetchTimeout, err = envSeconds("TOOLHOST_FETCH_TIMEOUT_SEC", DefaultFetchTimeout); err != nil {
		return Config{}, err
	}
	if cfg.CommandTimeout, err = envSeconds("TOOLHOST_COMMAND_TIMEOUT_SEC", DefaultCommandTimeout); err != nil {
		return Config{}, err
	}
	if raw := strings.TrimSpace(os.Getenv("TOOLHOST_MAX_REQUEST_BYTES")); raw != "" {
		parsed, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("invalid TOOLHOST_MAX_REQUEST_BYTES: %q", raw)
		}
		cfg.MaxRequestBytes = parsed
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envSeconds(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return time.Duration(seconds) * time.Second, nil
}
