// Package auth implements an optional shared-password gate for
// interactive sessions. The gate is active only when IMGEDIT_PASSWORD is
// set; repeated failures trigger a cooldown before more attempts are
// accepted.
package auth

import (
	"crypto/hmac"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const (
	// EnvPassword holds the expected password. Unset means no gate.
	EnvPassword = "IMGEDIT_PASSWORD"

	maxAttempts = 5
	cooldown    = 5 * time.Minute
)

var (
	ErrLockedOut   = fmt.Errorf("too many failed attempts")
	ErrBadPassword = fmt.Errorf("incorrect password")
)

// Gate tracks authentication state for one session.
type Gate struct {
	expected      []byte
	attempts      int
	lastAttempt   time.Time
	authenticated bool
	now           func() time.Time
	logger        zerolog.Logger
}

func NewGate(password string, logger zerolog.Logger) *Gate {
	return &Gate{
		expected: []byte(password),
		now:      time.Now,
		logger:   logger,
	}
}

// FromEnv builds a gate from EnvPassword. The second return value is
// false when no password is configured and the gate should be skipped.
func FromEnv(logger zerolog.Logger) (*Gate, bool) {
	password := os.Getenv(EnvPassword)
	if password == "" {
		return nil, false
	}
	return NewGate(password, logger), true
}

func (g *Gate) Authenticated() bool {
	return g.authenticated
}

// RemainingCooldown returns how long until attempts are accepted again,
// or zero when the gate is open for attempts.
func (g *Gate) RemainingCooldown() time.Duration {
	if g.attempts < maxAttempts {
		return 0
	}
	elapsed := g.now().Sub(g.lastAttempt)
	if elapsed >= cooldown {
		return 0
	}
	return cooldown - elapsed
}

// Try checks one password attempt. The comparison is constant-time.
func (g *Gate) Try(password string) error {
	if g.authenticated {
		return nil
	}

	if g.attempts >= maxAttempts {
		if wait := g.RemainingCooldown(); wait > 0 {
			return fmt.Errorf("%w: try again in %d seconds", ErrLockedOut, int(wait.Seconds()))
		}
		g.attempts = 0
	}

	if hmac.Equal([]byte(password), g.expected) {
		g.authenticated = true
		g.attempts = 0
		g.logger.Info().Str("action", "login").Bool("success", true).Msg("login")
		return nil
	}

	g.attempts++
	g.lastAttempt = g.now()
	left := maxAttempts - g.attempts
	g.logger.Warn().Str("action", "login").Bool("success", false).Int("attempts_left", left).Msg("login attempt failed")

	if left <= 0 {
		return fmt.Errorf("%w: try again later", ErrLockedOut)
	}
	return fmt.Errorf("%w: %d attempts left", ErrBadPassword, left)
}

// Prompt reads the password from the terminal without echo and runs it
// through Try, repeating until success or lockout.
func (g *Gate) Prompt(in *os.File, out io.Writer) error {
	for {
		fmt.Fprint(out, "Password: ")
		raw, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		err = g.Try(string(raw))
		if err == nil {
			return nil
		}
		fmt.Fprintln(out, err)
		if !g.CanAttempt() {
			return err
		}
	}
}

// CanAttempt reports whether another attempt would be accepted now.
func (g *Gate) CanAttempt() bool {
	return g.attempts < maxAttempts || g.RemainingCooldown() == 0
}
