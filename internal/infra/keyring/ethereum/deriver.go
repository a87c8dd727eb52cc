// Package ethereum implements the walletmgr.KeyDeriver interface for
// Ethereum-style wallets: BIP-39 mnemonics, BIP-44 hierarchical derivation
// at m/44'/60'/0'/0/0, and EIP-55 checksummed addresses.
package ethereum

import (
	"fmt"
	"strings"

	"github.com/donutlabs/walletcore/internal/walletmgr"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	bip39 "github.com/tyler-smith/go-bip39"
)

// entropyBits is the mnemonic entropy size: 128 bits yields 12 words.
const entropyBits = 128

// accountPath is the BIP-44 derivation path for the first account of the
// Ethereum coin type: m/44'/60'/0'/0/0.
var accountPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

// deriver implements walletmgr.KeyDeriver. It is stateless.
type deriver struct{}

// Ensure compile-time compliance with the walletmgr.KeyDeriver interface.
var _ walletmgr.KeyDeriver = (*deriver)(nil)

// NewDeriver creates the Ethereum key deriver.
func NewDeriver() *deriver {
	return &deriver{}
}

// GenerateMnemonic produces a fresh 12-word BIP-39 phrase. The caller's
// extra entropy is folded into the freshly drawn entropy by XOR, so the
// result stays unpredictable even if one of the two sources is weak.
func (d *deriver) GenerateMnemonic(extraEntropy []byte) (string, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("failed to draw mnemonic entropy: %w", err)
	}

	if len(extraEntropy) > 0 {
		for i := range entropy {
			entropy[i] ^= extraEntropy[i%len(extraEntropy)]
		}
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to encode mnemonic: %w", err)
	}

	return mnemonic, nil
}

// DeriveAddress deterministically maps a mnemonic to its first account
// address, EIP-55 checksummed. Phrases that fail BIP-39 validation yield
// walletmgr.ErrInvalidMnemonic.
func (d *deriver) DeriveAddress(mnemonic string) (string, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if !bip39.IsMnemonicValid(mnemonic) {
		return "", walletmgr.ErrInvalidMnemonic
	}

	seed := bip39.NewSeed(mnemonic, "")

	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return "", fmt.Errorf("failed to build master key: %w", err)
	}

	for _, step := range accountPath {
		if key, err = key.Derive(step); err != nil {
			return "", fmt.Errorf("failed to derive account key: %w", err)
		}
	}

	privKey, err := key.ECPrivKey()
	if err != nil {
		return "", fmt.Errorf("failed to extract private key: %w", err)
	}

	address := ethcrypto.PubkeyToAddress(privKey.ToECDSA().PublicKey)
	return address.Hex(), nil
}
