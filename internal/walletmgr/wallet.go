package walletmgr

import (
	"context"
	"errors"
)

var (
	// ErrWalletAlreadyExists is returned by Create and Import when a secret
	// is already stored for this device. Creating a second wallet is a
	// conflict, never a silent overwrite; Replace is the explicit override
	// path.
	ErrWalletAlreadyExists = errors.New("a wallet is already active on this device")

	// ErrInvalidMnemonic is returned when the key deriver rejects the
	// supplied recovery phrase.
	ErrInvalidMnemonic = errors.New("invalid mnemonic phrase")

	// ErrStorageUnavailable indicates a secret-store or record-store I/O
	// failure. The operation is terminal: secure-storage mutations are never
	// retried internally, since a blind retry risks partial or duplicated
	// secret writes. Retry policy belongs to the caller.
	ErrStorageUnavailable = errors.New("wallet storage unavailable")

	// ErrAuthenticationFailed is returned by Reveal when the authentication
	// gate rejects the user. The secret is not read.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrAuthenticationUnavailable is returned by Reveal when no
	// authentication method is provisioned (e.g. no passcode enrolled).
	// The secret is not read.
	ErrAuthenticationUnavailable = errors.New("authentication unavailable")

	// ErrNoActiveWallet is returned by operations that require an active
	// wallet (Reveal, Delete) when none exists.
	ErrNoActiveWallet = errors.New("no active wallet on this device")
)

// State describes whether a wallet is present on the device.
type State string

const (
	// StateEmpty means no wallet secret is stored.
	StateEmpty State = "empty"

	// StateActive means a wallet secret and derived address are present.
	StateActive State = "active"
)

// secretKey is the fixed identifier under which the one device mnemonic is
// stored in the secret store.
const secretKey = "secureWalletMnemonic"

// extraEntropySize is the number of cryptographically secure random bytes
// mixed into mnemonic generation as additional entropy, on top of the
// deriver's own entropy source. Guards against a weak platform RNG.
const extraEntropySize = 16

// AccessPolicy describes the protection a secret must be stored under.
type AccessPolicy struct {
	// RequirePasscode makes the secret readable only while a device
	// passcode or equivalent credential is provisioned.
	RequirePasscode bool

	// DeviceOnly forbids the secret from being synced or backed up off the
	// device. It must not survive a factory reset.
	DeviceOnly bool
}

// secretPolicy is the policy applied to the wallet mnemonic.
var secretPolicy = AccessPolicy{
	RequirePasscode: true,
	DeviceOnly:      true,
}

// SecretStorage is the durable, access-controlled store holding the one
// wallet secret. Implementations map their failures onto
// ErrStorageUnavailable.
type SecretStorage interface {
	// Put stores the secret under the given key with the given policy,
	// overwriting any previous value.
	Put(ctx context.Context, key, secret string, policy AccessPolicy) error

	// Get returns the secret stored under key. The boolean reports whether
	// a secret was present; absence is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Delete removes the secret stored under key. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error
}

// RecordStorage persists the plaintext, non-secret wallet records: the
// derived address and the selected network id. Loss of these records is
// recoverable (see Load's self-heal); loss of the secret is not.
type RecordStorage interface {
	SaveAddress(ctx context.Context, address string) error

	// LoadAddress returns the persisted address. The boolean reports
	// whether a record was present.
	LoadAddress(ctx context.Context) (string, bool, error)

	DeleteAddress(ctx context.Context) error

	SaveNetwork(ctx context.Context, chainID int) error

	// LoadNetwork returns the persisted chain id. The boolean reports
	// whether a selection was ever saved.
	LoadNetwork(ctx context.Context) (int, bool, error)
}

// KeyDeriver turns mnemonics into wallet identities. It is treated as an
// opaque external collaborator; determinism is its contract:
// DeriveAddress(m) must return the same address for the same phrase, every
// time.
type KeyDeriver interface {
	// GenerateMnemonic produces a fresh mnemonic, mixing the caller's extra
	// entropy into its own randomness source.
	GenerateMnemonic(extraEntropy []byte) (string, error)

	// DeriveAddress derives the canonical checksummed account address for
	// the phrase. Rejected phrases yield ErrInvalidMnemonic.
	DeriveAddress(mnemonic string) (string, error)
}

// AuthGate performs a fresh user-presence check (biometric, passcode, ...).
// Failures map onto ErrAuthenticationFailed / ErrAuthenticationUnavailable.
type AuthGate interface {
	Authenticate(ctx context.Context) error
}

// storageFailure tags an infrastructure error with the terminal
// ErrStorageUnavailable sentinel, unless the adapter already did.
func storageFailure(err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return errors.Join(ErrStorageUnavailable, err)
}
