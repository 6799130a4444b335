package account

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Kind tells which form of key material a Secret holds.
type Kind string

const (
	KindMnemonic   Kind = "mnemonic"
	KindPrivateKey Kind = "private_key"
)

// ErrUnknownKind is returned for a secret kind other than mnemonic or private_key.
var ErrUnknownKind = errors.New("unknown secret kind")

// Secret is custodial key material: exactly one mnemonic or one raw private key.
type Secret struct {
	Kind  Kind
	Value string
}

// ParseKind accepts "mnemonic" or "private_key"; empty means auto-detect.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return "", nil
	case KindMnemonic:
		return KindMnemonic, nil
	case KindPrivateKey, "privatekey", "private-key":
		return KindPrivateKey, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// NewSecret validates value as key material of the given kind and returns it
// in canonical form together with its address. An empty kind is inferred:
// a single whitespace-free token is a private key, anything else a mnemonic.
func NewSecret(kind Kind, value string) (Secret, common.Address, error) {
	if kind == "" {
		kind = detectKind(value)
	}
	switch kind {
	case KindMnemonic:
		normalized, err := NormalizeMnemonic(value)
		if err != nil {
			return Secret{}, common.Address{}, err
		}
		s := Secret{Kind: KindMnemonic, Value: normalized}
		addr, err := s.Address()
		return s, addr, err
	case KindPrivateKey:
		normalized, err := NormalizePrivateKey(value)
		if err != nil {
			return Secret{}, common.Address{}, err
		}
		s := Secret{Kind: KindPrivateKey, Value: normalized}
		addr, err := s.Address()
		return s, addr, err
	default:
		return Secret{}, common.Address{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Generate creates a new mnemonic-backed Secret and its address.
func Generate() (Secret, common.Address, error) {
	phrase, err := GenerateMnemonic()
	if err != nil {
		return Secret{}, common.Address{}, err
	}
	return NewSecret(KindMnemonic, phrase)
}

// Address derives the account address of the secret.
func (s Secret) Address() (common.Address, error) {
	switch s.Kind {
	case KindMnemonic:
		return FromMnemonic(s.Value)
	case KindPrivateKey:
		return FromPrivateKey(s.Value)
	default:
		return common.Address{}, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
}

// SigningKey returns the ECDSA key for s. Callers must not retain it beyond
// the operation that needs it.
func (s Secret) SigningKey() (*ecdsa.PrivateKey, error) {
	switch s.Kind {
	case KindMnemonic:
		return mnemonicKey(s.Value)
	case KindPrivateKey:
		return privateKey(s.Value)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
}

// String never prints key material.
func (s Secret) String() string {
	return fmt.Sprintf("Secret(%s)", s.Kind)
}

// GoString keeps %#v from leaking the value.
func (s Secret) GoString() string {
	return s.String()
}

func detectKind(value string) Kind {
	if len(strings.Fields(value)) == 1 {
		return KindPrivateKey
	}
	return KindMnemonic
}
