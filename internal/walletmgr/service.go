// Package walletmgr owns the wallet custody lifecycle: key material
// generation and import, secure persistence, gated disclosure, and
// destruction. It is the single source of truth for whether an active wallet
// exists and what its address is.
//
// At most one wallet is active per device. Every operation that touches the
// stores runs under a single writer lock, so two concurrent Create calls can
// never both pass the "no secret exists" check.
package walletmgr

import (
	"context"
	"sync"

	"github.com/donutlabs/walletcore/internal/chains"
	"github.com/donutlabs/walletcore/internal/pkg/resilience/retry"
)

// Service is the wallet lifecycle entrypoint.
type Service interface {
	// Load determines the startup state by probing the stores. If the
	// secret is present but the address record is missing, it re-derives
	// and re-persists the address (self-heal). If the secret is gone, any
	// stale address record is cleared: the secret store is ground truth.
	Load(ctx context.Context) error

	// Create generates a fresh wallet. It fails with ErrWalletAlreadyExists
	// if a secret is already stored. Returns the derived address.
	Create(ctx context.Context) (string, error)

	// Import restores a wallet from a caller-supplied mnemonic under the
	// same precondition as Create. Returns the derived address.
	Import(ctx context.Context, mnemonic string) (string, error)

	// Replace unconditionally overwrites any existing secret and address
	// with those derived from the supplied mnemonic. This is the explicit
	// user-intended override path; the "already active" guard does not
	// apply. Returns the derived address.
	Replace(ctx context.Context, mnemonic string) (string, error)

	// Reveal returns the stored mnemonic after a fresh successful
	// authentication. Authentication gates the read: on
	// ErrAuthenticationFailed or ErrAuthenticationUnavailable the secret is
	// never touched. The caller must not retain the phrase beyond the
	// user-visible action.
	Reveal(ctx context.Context) (string, error)

	// Delete destroys the wallet: secret first, then the address record.
	// A crash between the two is healed by the next Load.
	Delete(ctx context.Context) error

	// State reports whether a wallet is currently active.
	State() State

	// Address returns the active wallet's checksummed address, or the empty
	// string when no wallet exists.
	Address() string

	// Network returns the currently selected network.
	Network() chains.Network

	// SetNetwork persists a new network selection. Unknown chain ids are
	// rejected.
	SetNetwork(ctx context.Context, chainID int) error
}

// service is the concrete implementation of the Service interface.
type service struct {
	mu sync.Mutex // serializes every store-touching operation

	state   State
	address string
	network chains.Network

	secrets SecretStorage
	records RecordStorage
	deriver KeyDeriver
	auth    AuthGate

	retry retry.Retry // read-only record probes during Load; nil disables
}

// Compile-time check that *service satisfies the Service interface.
var _ Service = (*service)(nil)

// config holds optional settings applied by New.
type config struct {
	retry retry.Retry
}

// Option configures the service during construction.
type Option func(*config)

// WithLoadRetry retries the read-only store probes performed by Load.
// Mutating operations are never retried regardless of this option.
func WithLoadRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// New creates the wallet lifecycle service from its collaborators. Call
// Load before any other operation to establish the startup state.
func New(secrets SecretStorage, records RecordStorage, deriver KeyDeriver, auth AuthGate, opts ...Option) *service {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		state:   StateEmpty,
		network: chains.Default(),
		secrets: secrets,
		records: records,
		deriver: deriver,
		auth:    auth,
		retry:   cfg.retry,
	}
}

// State reports the current lifecycle state.
func (s *service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Address returns the active wallet address, if any.
func (s *service) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// Network returns the active network selection.
func (s *service) Network() chains.Network {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.network
}

// withReadRetry runs a read-only operation through the configured retry
// mechanism, or directly when none is set.
func (s *service) withReadRetry(ctx context.Context, op func() error) error {
	if s.retry == nil {
		return op()
	}
	return s.retry.Execute(ctx, op)
}
