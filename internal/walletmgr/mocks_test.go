package walletmgr

import (
	"context"
	"strings"
)

// secretStorageFake is an in-memory SecretStorage with injectable failures.
type secretStorageFake struct {
	secrets  map[string]string
	policies map[string]AccessPolicy

	getErr    error
	putErr    error
	deleteErr error

	putCalls    int
	deleteCalls int
}

func newSecretStorageFake() *secretStorageFake {
	return &secretStorageFake{
		secrets:  make(map[string]string),
		policies: make(map[string]AccessPolicy),
	}
}

func (f *secretStorageFake) Put(_ context.Context, key, secret string, policy AccessPolicy) error {
	f.putCalls++
	if f.putErr != nil {
		return f.putErr
	}
	f.secrets[key] = secret
	f.policies[key] = policy
	return nil
}

func (f *secretStorageFake) Get(_ context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	secret, ok := f.secrets[key]
	return secret, ok, nil
}

func (f *secretStorageFake) Delete(_ context.Context, key string) error {
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.secrets, key)
	delete(f.policies, key)
	return nil
}

// recordStorageFake is an in-memory RecordStorage with injectable failures.
type recordStorageFake struct {
	address    string
	hasAddress bool
	chainID    int
	hasNetwork bool

	saveAddressErr   error
	loadAddressErr   error
	deleteAddressErr error
	saveNetworkErr   error
	loadNetworkErr   error
}

func (f *recordStorageFake) SaveAddress(_ context.Context, address string) error {
	if f.saveAddressErr != nil {
		return f.saveAddressErr
	}
	f.address, f.hasAddress = address, true
	return nil
}

func (f *recordStorageFake) LoadAddress(_ context.Context) (string, bool, error) {
	if f.loadAddressErr != nil {
		return "", false, f.loadAddressErr
	}
	return f.address, f.hasAddress, nil
}

func (f *recordStorageFake) DeleteAddress(_ context.Context) error {
	if f.deleteAddressErr != nil {
		return f.deleteAddressErr
	}
	f.address, f.hasAddress = "", false
	return nil
}

func (f *recordStorageFake) SaveNetwork(_ context.Context, chainID int) error {
	if f.saveNetworkErr != nil {
		return f.saveNetworkErr
	}
	f.chainID, f.hasNetwork = chainID, true
	return nil
}

func (f *recordStorageFake) LoadNetwork(_ context.Context) (int, bool, error) {
	if f.loadNetworkErr != nil {
		return 0, false, f.loadNetworkErr
	}
	return f.chainID, f.hasNetwork, nil
}

// deriverFake derives a deterministic pseudo-address from the phrase itself,
// which keeps the determinism property visible in tests.
type deriverFake struct {
	generated   string
	generateErr error
	deriveErr   error

	lastExtraEntropy []byte
}

func (f *deriverFake) GenerateMnemonic(extraEntropy []byte) (string, error) {
	if f.generateErr != nil {
		return "", f.generateErr
	}
	f.lastExtraEntropy = append([]byte(nil), extraEntropy...)
	if f.generated != "" {
		return f.generated, nil
	}
	return "legal winner thank year wave sausage worth useful legal winner thank yellow", nil
}

func (f *deriverFake) DeriveAddress(mnemonic string) (string, error) {
	if f.deriveErr != nil {
		return "", f.deriveErr
	}
	if strings.TrimSpace(mnemonic) == "" {
		return "", ErrInvalidMnemonic
	}
	return "0xAddr" + mnemonic[:4], nil
}

// authGateFake replays a configured authentication outcome.
type authGateFake struct {
	err   error
	calls int
}

func (f *authGateFake) Authenticate(context.Context) error {
	f.calls++
	return f.err
}

func newTestService(secrets *secretStorageFake, records *recordStorageFake, deriver *deriverFake, auth *authGateFake) *service {
	if secrets == nil {
		secrets = newSecretStorageFake()
	}
	if records == nil {
		records = &recordStorageFake{}
	}
	if deriver == nil {
		deriver = &deriverFake{}
	}
	if auth == nil {
		auth = &authGateFake{}
	}
	return New(secrets, records, deriver, auth)
}
