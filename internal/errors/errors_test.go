package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
	"time"
)

func TestSetupError_Kinds(t *testing.T) {
	cause := fmt.Errorf("address already in use")
	bind := Bind("listen", ":12345", cause)
	if !errors.Is(bind, ErrBind) {
		t.Error("bind error should match ErrBind")
	}
	if errors.Is(bind, ErrUnreachable) {
		t.Error("bind error should not match ErrUnreachable")
	}
	if !errors.Is(bind, cause) {
		t.Error("bind error should unwrap to its cause")
	}

	reach := Unreachable("10.0.0.1:12345", syscall.ECONNREFUSED)
	if !errors.Is(reach, ErrUnreachable) {
		t.Error("connect error should match ErrUnreachable")
	}
	if !IsRefused(reach) {
		t.Error("connect error should be recognised as refused")
	}
}

func TestSetupError_NoPeer(t *testing.T) {
	err := NoPeer("0.0.0.0:12345", 5*time.Second)
	if !errors.Is(err, ErrNoPeer) || !errors.Is(err, ErrTimeout) {
		t.Errorf("%v should match ErrNoPeer and ErrTimeout", err)
	}
	if errors.Is(err, ErrBind) {
		t.Error("accept timeout must not look like a bind failure")
	}
	want := "no peer connected: accept 0.0.0.0:12345: operation timed out after 5s"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSetupError_Format(t *testing.T) {
	err := Bind("accept", "[::]:12345", io.EOF)
	want := "could not bind/listen: accept [::]:12345: EOF"
	if got := err.Error(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNetworkError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  NetworkError
		want string
	}{
		{
			name: "retryable",
			err:  NetworkError{Op: "dial", Addr: "example.com:80", Err: io.EOF, Retryable: true},
			want: "dial example.com:80: EOF (retryable)",
		},
		{
			name: "non-retryable",
			err:  NetworkError{Op: "write", Addr: "127.0.0.1:12345", Err: fmt.Errorf("broken pipe")},
			want: "write 127.0.0.1:12345: broken pipe",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "port",
				Value:   99999,
				Message: "out of range 1-65535",
				Hint:    "use a port between 1 and 65535",
			},
			want: "config: --port=99999: out of range 1-65535\n  hint: use a port between 1 and 65535",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "host",
				Message: "required in connect mode",
			},
			want: "config: --host: required in connect mode",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestConfigError_IsUsage(t *testing.T) {
	var err error = &ConfigError{Field: "args", Message: "expected 0 or 2 arguments"}
	if !errors.Is(fmt.Errorf("wrapped: %w", err), ErrUsage) {
		t.Error("ConfigError should match ErrUsage through wrapping")
	}
}

func TestIsClosed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"net closed", net.ErrClosed, true},
		{"op closed", &net.OpError{Op: "read", Err: net.ErrClosed}, true},
		{"session closed", fmt.Errorf("send: %w", ErrSessionClosed), true},
		{"reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"unexpected eof", io.ErrUnexpectedEOF, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsClosed(tt.err); got != tt.want {
				t.Errorf("IsClosed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable network", &NetworkError{Op: "dial", Addr: "x", Err: io.EOF, Retryable: true}, true},
		{"non-retryable network", &NetworkError{Op: "dial", Addr: "x", Err: io.EOF, Retryable: false}, false},
		{"plain error", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyRetryable_NetOpError(t *testing.T) {
	opErr := &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: &net.DNSError{IsTemporary: true},
	}
	if !classifyRetryable(opErr) {
		t.Error("temporary OpError should be retryable")
	}
}

func TestSSHError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("auth fail")
	err := WrapSSH("auth", "host", 22, inner)
	if !errors.Is(err, inner) {
		t.Error("should unwrap to inner error")
	}
	if got, want := err.Error(), "ssh auth host:22: auth fail"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSentinels(t *testing.T) {
	sentinels := []error{
		ErrSessionClosed, ErrUsage, ErrBind, ErrNoPeer, ErrUnreachable,
		ErrNotConnected, ErrTimeout, ErrAuthFailed, ErrHostKeyMismatch,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %d and %d should not match", i, j)
			}
		}
	}
}
