package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the PEERCHAT_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	// The env port is for listening only; it never pins a connector's
	// source port.
	if v := envInt("PEERCHAT_PORT"); v > 0 {
		cfg.ListenPort = v
	}
	if v := envInt("PEERCHAT_TIMEOUT"); v > 0 {
		cfg.Timeout = secondsDuration(v)
	}
	if v := envInt("PEERCHAT_RETRY"); v > 0 {
		cfg.ConnectAttempts = v
	}
	if envBool("PEERCHAT_NO_DNS") {
		cfg.NoDNS = true
	}

	// Session
	if v, ok := os.LookupEnv("PEERCHAT_PREFIX"); ok {
		cfg.Prefix = v
	}
	if v := envFloat("PEERCHAT_RATE"); v > 0 {
		cfg.SendRate = v
	}
	if v := envInt("PEERCHAT_BURST"); v > 0 {
		cfg.SendBurst = v
	}
	if v := envInt("PEERCHAT_MAX_LINE"); v > 0 {
		cfg.MaxLineSize = v
	}

	// SSH gateway
	if v := os.Getenv("PEERCHAT_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("PEERCHAT_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("PEERCHAT_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("PEERCHAT_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("PEERCHAT_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("PEERCHAT_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := envInt("PEERCHAT_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envFloat(key string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
