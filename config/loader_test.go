package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadFromEnv_Port(t *testing.T) {
	t.Setenv("PEERCHAT_PORT", "8080")
	cfg := Defaults()
	LoadFromEnv(cfg)
	if cfg.ListenPort != 8080 {
		t.Errorf("ListenPort = %d, want 8080", cfg.ListenPort)
	}
	if cfg.LocalPort != 0 {
		t.Errorf("LocalPort = %d, want 0 until a role is resolved", cfg.LocalPort)
	}
}

func TestLoadFromEnv_Booleans(t *testing.T) {
	tests := []struct {
		key    string
		values []string
	}{
		{"PEERCHAT_NO_DNS", []string{"1", "true", "yes", "TRUE", "Yes"}},
		{"PEERCHAT_SSH_AGENT", []string{"1", "true"}},
		{"PEERCHAT_STRICT_HOSTKEY", []string{"yes"}},
	}

	for _, tt := range tests {
		for _, v := range tt.values {
			t.Run(tt.key+"="+v, func(t *testing.T) {
				t.Setenv(tt.key, v)
				cfg := &Config{}
				LoadFromEnv(cfg)

				switch tt.key {
				case "PEERCHAT_NO_DNS":
					if !cfg.NoDNS {
						t.Error("NoDNS should be true")
					}
				case "PEERCHAT_SSH_AGENT":
					if !cfg.UseSSHAgent {
						t.Error("UseSSHAgent should be true")
					}
				case "PEERCHAT_STRICT_HOSTKEY":
					if !cfg.StrictHostKey {
						t.Error("StrictHostKey should be true")
					}
				}
			})
		}
	}
}

func TestLoadFromEnv_TimeoutAndRetry(t *testing.T) {
	t.Setenv("PEERCHAT_TIMEOUT", "10")
	t.Setenv("PEERCHAT_RETRY", "5")
	cfg := Defaults()
	LoadFromEnv(cfg)
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.ConnectAttempts != 5 {
		t.Errorf("ConnectAttempts = %d, want 5", cfg.ConnectAttempts)
	}
}

func TestLoadFromEnv_Session(t *testing.T) {
	t.Setenv("PEERCHAT_PREFIX", "<< ")
	t.Setenv("PEERCHAT_RATE", "2.5")
	t.Setenv("PEERCHAT_BURST", "4")
	t.Setenv("PEERCHAT_MAX_LINE", "1024")
	cfg := Defaults()
	LoadFromEnv(cfg)
	if cfg.Prefix != "<< " {
		t.Errorf("Prefix = %q", cfg.Prefix)
	}
	if cfg.SendRate != 2.5 {
		t.Errorf("SendRate = %v", cfg.SendRate)
	}
	if cfg.SendBurst != 4 {
		t.Errorf("SendBurst = %d", cfg.SendBurst)
	}
	if cfg.MaxLineSize != 1024 {
		t.Errorf("MaxLineSize = %d", cfg.MaxLineSize)
	}
}

func TestLoadFromEnv_EmptyPrefixAllowed(t *testing.T) {
	t.Setenv("PEERCHAT_PREFIX", "")
	cfg := Defaults()
	LoadFromEnv(cfg)
	if cfg.Prefix != "" {
		t.Errorf("Prefix = %q, want empty", cfg.Prefix)
	}
}

func TestLoadFromEnv_SSHFields(t *testing.T) {
	t.Setenv("PEERCHAT_TUNNEL", "admin@bastion:2222")
	t.Setenv("PEERCHAT_SSH_KEY", "/home/user/.ssh/id_rsa")
	t.Setenv("PEERCHAT_SSH_PASSWORD", "true")
	t.Setenv("PEERCHAT_KNOWN_HOSTS", "/custom/known_hosts")

	cfg := &Config{}
	LoadFromEnv(cfg)

	if cfg.TunnelSpec != "admin@bastion:2222" {
		t.Errorf("TunnelSpec = %q", cfg.TunnelSpec)
	}
	if cfg.SSHKeyPath != "/home/user/.ssh/id_rsa" {
		t.Errorf("SSHKeyPath = %q", cfg.SSHKeyPath)
	}
	if !cfg.SSHPassword {
		t.Error("SSHPassword should be true")
	}
	if cfg.KnownHostsPath != "/custom/known_hosts" {
		t.Errorf("KnownHostsPath = %q", cfg.KnownHostsPath)
	}
}

func TestLoadFromEnv_NoOverrideWhenEmpty(t *testing.T) {
	os.Clearenv()

	cfg := &Config{Host: "original", LocalPort: 1234, Prefix: "P: "}
	LoadFromEnv(cfg)

	if cfg.Host != "original" {
		t.Errorf("Host was overridden: %q", cfg.Host)
	}
	if cfg.LocalPort != 1234 {
		t.Errorf("LocalPort was overridden: %d", cfg.LocalPort)
	}
	if cfg.Prefix != "P: " {
		t.Errorf("Prefix was overridden: %q", cfg.Prefix)
	}
}

func TestLoadFromEnv_InvalidNumbersIgnored(t *testing.T) {
	t.Setenv("PEERCHAT_PORT", "not-a-number")
	t.Setenv("PEERCHAT_RATE", "fast")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.ListenPort != 0 {
		t.Errorf("ListenPort should be 0 for invalid input, got %d", cfg.ListenPort)
	}
	if cfg.SendRate != 0 {
		t.Errorf("SendRate should be 0 for invalid input, got %v", cfg.SendRate)
	}
}

func TestLoadFromEnv_Verbose(t *testing.T) {
	t.Setenv("PEERCHAT_VERBOSE", "3")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Verbose != 3 {
		t.Errorf("Verbose = %d, want 3", cfg.Verbose)
	}
}
