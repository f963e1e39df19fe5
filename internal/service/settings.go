package service

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kingrea/convene/internal/schedule"
)

const (
	// DefaultHost is the loopback interface used when no host override is provided.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the default TCP port for the scheduling service.
	DefaultPort = 8712
	// DefaultMaxBodyBytes limits request payloads to 1 MB.
	DefaultMaxBodyBytes int64 = 1 << 20
	// DefaultReadTimeout guards hung clients.
	DefaultReadTimeout = 15 * time.Second
	// DefaultWriteTimeout bounds handler writes. Solves run inside it, so it
	// leaves headroom over the solve budget.
	DefaultWriteTimeout = 30 * time.Second
	// DefaultIdleTimeout bounds keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second
)

// Settings captures runtime configuration for the scheduling service.
type Settings struct {
	Enabled      bool
	Host         string
	Port         int
	RosterPath   string
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	SolveBudget  time.Duration
}

// SettingsFromEnv builds Settings from defaults plus CONVENE_* overrides.
func SettingsFromEnv() Settings {
	settings := Settings{
		Enabled:      true,
		Host:         DefaultHost,
		Port:         DefaultPort,
		MaxBodyBytes: DefaultMaxBodyBytes,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
		SolveBudget:  schedule.DefaultBudget,
	}
	settings.applyEnvOverrides()
	settings.normalize()
	return settings
}

func (s *Settings) applyEnvOverrides() {
	if s == nil {
		return
	}
	if value := strings.TrimSpace(os.Getenv("CONVENE_ENABLED")); value != "" {
		if enabled, err := strconv.ParseBool(value); err == nil {
			s.Enabled = enabled
		}
	}
	if host := strings.TrimSpace(os.Getenv("CONVENE_HOST")); host != "" {
		s.Host = host
	}
	if port := strings.TrimSpace(os.Getenv("CONVENE_PORT")); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil && isValidPort(parsed) {
			s.Port = parsed
		}
	}
	if path := strings.TrimSpace(os.Getenv("CONVENE_ROSTER")); path != "" {
		s.RosterPath = path
	}
	if limit := strings.TrimSpace(os.Getenv("CONVENE_MAX_BODY")); limit != "" {
		if parsed, err := strconv.ParseInt(limit, 10, 64); err == nil && parsed > 0 {
			s.MaxBodyBytes = parsed
		}
	}
	if budget := strings.TrimSpace(os.Getenv("CONVENE_SOLVE_BUDGET")); budget != "" {
		if parsed, err := time.ParseDuration(budget); err == nil && parsed > 0 {
			s.SolveBudget = parsed
		}
	}
}

func (s *Settings) normalize() {
	if s == nil {
		return
	}
	s.Host = strings.TrimSpace(s.Host)
	if s.Host == "" {
		s.Host = DefaultHost
	}
	if !isValidPort(s.Port) {
		s.Port = DefaultPort
	}
	s.RosterPath = strings.TrimSpace(s.RosterPath)
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if s.ReadTimeout <= 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.SolveBudget <= 0 {
		s.SolveBudget = schedule.DefaultBudget
	}
}

// Address returns the TCP bind address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// URL returns the HTTP base URL for the service.
func (s Settings) URL() string {
	return "http://" + s.Address()
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}
