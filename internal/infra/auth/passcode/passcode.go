// Package passcode implements walletmgr.AuthGate with a terminal passcode
// prompt. It stands in for a device credential check: revealing the wallet
// secret requires the user to re-enter the provisioned passcode, every time.
package passcode

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"

	"github.com/donutlabs/walletcore/internal/walletmgr"

	"golang.org/x/term"
)

// PromptFunc asks the user for their passcode and returns it. The default
// implementation reads from the terminal without echo.
type PromptFunc func(ctx context.Context) ([]byte, error)

// Gate is a passcode backed walletmgr.AuthGate.
type Gate struct {
	provisioned []byte
	prompt      PromptFunc
}

// Ensure compile-time compliance with the walletmgr.AuthGate interface.
var _ walletmgr.AuthGate = (*Gate)(nil)

// Option configures the Gate.
type Option func(*Gate)

// WithPrompt overrides how the passcode is collected. Used by tests and by
// callers embedding the gate behind a different UI.
func WithPrompt(prompt PromptFunc) Option {
	return func(g *Gate) {
		g.prompt = prompt
	}
}

// New creates a gate that accepts exactly the provisioned passcode.
func New(provisioned []byte, opts ...Option) *Gate {
	g := &Gate{
		provisioned: provisioned,
		prompt:      terminalPrompt,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Authenticate runs a fresh user presence check. No passcode provisioned or
// no way to prompt maps to ErrAuthenticationUnavailable; a wrong passcode to
// ErrAuthenticationFailed. Comparison is constant time.
func (g *Gate) Authenticate(ctx context.Context) error {
	if len(g.provisioned) == 0 {
		return walletmgr.ErrAuthenticationUnavailable
	}

	entered, err := g.prompt(ctx)
	if err != nil {
		if errors.Is(err, walletmgr.ErrAuthenticationUnavailable) {
			return err
		}
		return errors.Join(walletmgr.ErrAuthenticationUnavailable, err)
	}

	if subtle.ConstantTimeCompare(entered, g.provisioned) != 1 {
		return walletmgr.ErrAuthenticationFailed
	}

	return nil
}

// terminalPrompt reads the passcode from the controlling terminal without
// echoing it back.
func terminalPrompt(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, walletmgr.ErrAuthenticationUnavailable
	}

	fmt.Fprint(os.Stderr, "Passcode: ")
	entered, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read passcode: %w", err)
	}

	return entered, nil
}
