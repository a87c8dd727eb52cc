package walletmgr

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/donutlabs/walletcore/internal/chains"
	"github.com/donutlabs/walletcore/internal/pkg/logger"
	"github.com/donutlabs/walletcore/internal/pkg/validator"
)

// importInput carries the caller-supplied phrase for Import and Replace.
type importInput struct {
	Mnemonic string `validate:"required"`
}

// ensureEmptyLocked enforces the single-active-wallet invariant by probing
// the secret store. Callers must hold s.mu, which is what makes the
// check-then-act race-safe.
func (s *service) ensureEmptyLocked(ctx context.Context) error {
	_, found, err := s.secrets.Get(ctx, secretKey)
	if err != nil {
		return storageFailure(err)
	}
	if found {
		return ErrWalletAlreadyExists
	}
	return nil
}

// persistLocked writes the secret and then the address record, updating the
// in-memory state on success. An address-record failure after a successful
// secret write is surfaced as StorageUnavailable; the next Load self-heals
// the missing record from the intact secret.
func (s *service) persistLocked(ctx context.Context, mnemonic, address string) error {
	if err := s.secrets.Put(ctx, secretKey, mnemonic, secretPolicy); err != nil {
		return storageFailure(err)
	}

	if err := s.records.SaveAddress(ctx, address); err != nil {
		return storageFailure(err)
	}

	s.state = StateActive
	s.address = address
	return nil
}

// Create generates a fresh wallet identity and persists it.
//
// Fresh entropy is read from the platform CSPRNG and mixed into the
// deriver's mnemonic generation as additional entropy, so a weakness in the
// deriver's internal source alone cannot produce a predictable phrase.
func (s *service) Create(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureEmptyLocked(ctx); err != nil {
		return "", err
	}

	extra := make([]byte, extraEntropySize)
	if _, err := rand.Read(extra); err != nil {
		return "", fmt.Errorf("failed to gather extra entropy: %w", err)
	}

	mnemonic, err := s.deriver.GenerateMnemonic(extra)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	address, err := s.deriver.DeriveAddress(mnemonic)
	if err != nil {
		return "", fmt.Errorf("failed to derive address: %w", err)
	}

	if err := s.persistLocked(ctx, mnemonic, address); err != nil {
		return "", err
	}

	logger.Info(ctx, "wallet created", "wallet.address", address)
	return address, nil
}

// Import restores a wallet from an existing recovery phrase under the same
// precondition and persistence order as Create.
func (s *service) Import(ctx context.Context, mnemonic string) (string, error) {
	if err := validator.Validate(importInput{Mnemonic: mnemonic}); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureEmptyLocked(ctx); err != nil {
		return "", err
	}

	address, err := s.deriver.DeriveAddress(mnemonic)
	if err != nil {
		return "", err
	}

	if err := s.persistLocked(ctx, mnemonic, address); err != nil {
		return "", err
	}

	logger.Info(ctx, "wallet imported", "wallet.address", address)
	return address, nil
}

// Replace overwrites whatever is stored with the identity derived from the
// supplied phrase. Used for recovery flows where one of the two stores lost
// its record while the other is intact.
func (s *service) Replace(ctx context.Context, mnemonic string) (string, error) {
	if err := validator.Validate(importInput{Mnemonic: mnemonic}); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	address, err := s.deriver.DeriveAddress(mnemonic)
	if err != nil {
		return "", err
	}

	if err := s.persistLocked(ctx, mnemonic, address); err != nil {
		return "", err
	}

	logger.Warn(ctx, "wallet replaced", "wallet.address", address)
	return address, nil
}

// Reveal discloses the stored mnemonic after a fresh authentication.
//
// It holds the same lock as the mutating operations, so a concurrent Delete
// cannot remove the secret mid-reveal. Authentication runs strictly before
// the secret store is read.
func (s *service) Reveal(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.auth.Authenticate(ctx); err != nil {
		return "", err
	}

	mnemonic, found, err := s.secrets.Get(ctx, secretKey)
	if err != nil {
		return "", storageFailure(err)
	}
	if !found {
		return "", ErrNoActiveWallet
	}

	return mnemonic, nil
}

// Delete destroys the wallet. The secret is removed first; once it is gone
// the wallet is considered destroyed even if the address-record cleanup
// fails, since Load treats the secret store as ground truth and clears the
// stale record on the next start.
func (s *service) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, found, err := s.secrets.Get(ctx, secretKey)
	if err != nil {
		return storageFailure(err)
	}
	if !found {
		return ErrNoActiveWallet
	}

	if err := s.secrets.Delete(ctx, secretKey); err != nil {
		return storageFailure(err)
	}

	s.state = StateEmpty
	s.address = ""

	if err := s.records.DeleteAddress(ctx); err != nil {
		return storageFailure(err)
	}

	logger.Info(ctx, "wallet deleted")
	return nil
}

// Load establishes the startup state from the persisted stores.
//
// The secret store is ground truth: a present secret with a missing address
// record triggers a re-derivation and re-persist (self-heal), while a
// missing secret clears any stale address record left behind by an
// interrupted Delete.
func (s *service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadNetworkLocked(ctx)

	var (
		mnemonic string
		found    bool
	)
	err := s.withReadRetry(ctx, func() error {
		var err error
		mnemonic, found, err = s.secrets.Get(ctx, secretKey)
		return err
	})
	if err != nil {
		return storageFailure(err)
	}

	if !found {
		return s.clearStaleAddressLocked(ctx)
	}

	var (
		address      string
		addressFound bool
	)
	err = s.withReadRetry(ctx, func() error {
		var err error
		address, addressFound, err = s.records.LoadAddress(ctx)
		return err
	})
	if err != nil {
		return storageFailure(err)
	}

	if !addressFound {
		return s.selfHealLocked(ctx, mnemonic)
	}

	s.state = StateActive
	s.address = address
	return nil
}

// clearStaleAddressLocked handles the "secret gone, address record still
// present" aftermath of an interrupted Delete.
func (s *service) clearStaleAddressLocked(ctx context.Context) error {
	s.state = StateEmpty
	s.address = ""

	_, addressFound, err := s.records.LoadAddress(ctx)
	if err != nil {
		return storageFailure(err)
	}
	if !addressFound {
		return nil
	}

	logger.Warn(ctx, "clearing stale address record with no backing secret")
	if err := s.records.DeleteAddress(ctx); err != nil {
		return storageFailure(err)
	}
	return nil
}

// selfHealLocked re-derives and re-persists the address from the intact
// secret when the address record was lost.
func (s *service) selfHealLocked(ctx context.Context, mnemonic string) error {
	address, err := s.deriver.DeriveAddress(mnemonic)
	if err != nil {
		return err
	}

	if err := s.records.SaveAddress(ctx, address); err != nil {
		return storageFailure(err)
	}

	logger.Warn(ctx, "re-derived missing address record from stored secret", "wallet.address", address)
	s.state = StateActive
	s.address = address
	return nil
}

// loadNetworkLocked restores the persisted network selection, falling back
// to the default for missing or unrecognized records. Failures here never
// abort Load: a wallet with a default network beats no wallet at all.
func (s *service) loadNetworkLocked(ctx context.Context) {
	var (
		chainID int
		found   bool
	)
	err := s.withReadRetry(ctx, func() error {
		var err error
		chainID, found, err = s.records.LoadNetwork(ctx)
		return err
	})
	if err != nil {
		logger.Warn(ctx, "failed to load network selection, using default", "error", err)
		s.network = chains.Default()
		return
	}

	if !found {
		s.network = chains.Default()
		return
	}

	network, ok := chains.ByID(chainID)
	if !ok {
		logger.Warn(ctx, "persisted network id is not supported, using default", "network.id", chainID)
		s.network = chains.Default()
		return
	}

	s.network = network
}

// SetNetwork persists a new network selection.
func (s *service) SetNetwork(ctx context.Context, chainID int) error {
	network, ok := chains.ByID(chainID)
	if !ok {
		return fmt.Errorf("unsupported chain id %d", chainID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.records.SaveNetwork(ctx, network.ID); err != nil {
		return storageFailure(err)
	}

	s.network = network
	return nil
}
