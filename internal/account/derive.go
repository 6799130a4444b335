// Package account maps custodial key material to chain addresses.
//
// Mnemonics follow BIP-39 (English wordlist, empty passphrase) and are
// expanded along the standard Ethereum path m/44'/60'/0'/0/0, so a phrase
// imported here resolves to the same account a browser wallet shows for it.
package account

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

const (
	// mnemonicEntropyBits yields a 12-word phrase.
	mnemonicEntropyBits = 128
	privateKeyHexLen    = 64
)

var (
	// ErrInvalidMnemonic is returned for phrases that are not 12 or 24 valid words.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")
	// ErrInvalidKey is returned for private keys that are not 32 bytes of hex
	// or fall outside the secp256k1 scalar range.
	ErrInvalidKey = errors.New("invalid private key")
)

// ethereumPath is m/44'/60'/0'/0/0.
var ethereumPath = []uint32{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart + 0,
	0,
	0,
}

// GenerateMnemonic returns a fresh 12-word phrase drawn from crypto/rand.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("generate entropy: %w", err)
	}
	return bip39.NewMnemonic(entropy)
}

// NormalizeMnemonic lowercases the phrase and collapses whitespace. It
// validates word count and checksum.
func NormalizeMnemonic(phrase string) (string, error) {
	words := strings.Fields(strings.ToLower(phrase))
	if len(words) != 12 && len(words) != 24 {
		return "", fmt.Errorf("%w: expected 12 or 24 words, got %d", ErrInvalidMnemonic, len(words))
	}
	normalized := strings.Join(words, " ")
	if !bip39.IsMnemonicValid(normalized) {
		return "", fmt.Errorf("%w: unknown word or bad checksum", ErrInvalidMnemonic)
	}
	return normalized, nil
}

// FromMnemonic derives the account address of phrase.
func FromMnemonic(phrase string) (common.Address, error) {
	key, err := mnemonicKey(phrase)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

// NormalizePrivateKey strips an optional 0x prefix and checks for exactly 64
// hex characters describing a valid secp256k1 scalar.
func NormalizePrivateKey(raw string) (string, error) {
	h := strings.TrimSpace(raw)
	if strings.HasPrefix(h, "0x") || strings.HasPrefix(h, "0X") {
		h = h[2:]
	}
	if len(h) != privateKeyHexLen {
		return "", fmt.Errorf("%w: expected %d hex characters, got %d", ErrInvalidKey, privateKeyHexLen, len(h))
	}
	for _, r := range h {
		if !isHex(r) {
			return "", fmt.Errorf("%w: non-hex character %q", ErrInvalidKey, r)
		}
	}
	h = strings.ToLower(h)
	if _, err := crypto.HexToECDSA(h); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return h, nil
}

// FromPrivateKey derives the account address of a hex private key.
func FromPrivateKey(raw string) (common.Address, error) {
	key, err := privateKey(raw)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(key.PublicKey), nil
}

func mnemonicKey(phrase string) (*ecdsa.PrivateKey, error) {
	normalized, err := NormalizeMnemonic(phrase)
	if err != nil {
		return nil, err
	}
	seed := bip39.NewSeed(normalized, "")
	key, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	for _, index := range ethereumPath {
		key, err = key.Derive(index)
		if err != nil {
			return nil, fmt.Errorf("%w: derive child: %v", ErrInvalidMnemonic, err)
		}
	}
	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	return priv.ToECDSA(), nil
}

func privateKey(raw string) (*ecdsa.PrivateKey, error) {
	h, err := NormalizePrivateKey(raw)
	if err != nil {
		return nil, err
	}
	key, err := crypto.HexToECDSA(h)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return key, nil
}

func isHex(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
