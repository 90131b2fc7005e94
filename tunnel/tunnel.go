// Package tunnel reaches a peer through an SSH jump host.  The
// connector opens one SSH connection to the gateway and asks it to
// forward a single TCP stream to the listening peer (a "direct-tcpip"
// channel); the chat session then runs over that channel unchanged.
package tunnel

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

// Config holds everything needed to log in to an SSH gateway.
type Config struct {
	User          string
	Host          string
	Port          int
	KeyPath       string
	PromptPass    bool // ask for a password interactively
	UseAgent      bool
	StrictHostKey bool
	KnownHosts    string // defaults to ~/.ssh/known_hosts
	Timeout       time.Duration

	// Prompt reads a secret (password or key passphrase) after showing
	// the given prompt.  Defaults to a no-echo read from the terminal.
	Prompt func(prompt string) ([]byte, error)
}

// Addr returns the gateway's host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) prompt(p string) ([]byte, error) {
	if c.Prompt != nil {
		return c.Prompt(p)
	}
	return terminalPrompt(p)
}

func terminalPrompt(p string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot prompt for %q: stdin is not a terminal", p)
	}
	fmt.Fprint(os.Stderr, p)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	return secret, err
}
