package wallet

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	sealVersion byte = 1
	sealInfo         = "phonomorph/wallet-secret/v1"
)

// ErrUnsealFailed is returned when a stored secret cannot be authenticated.
var ErrUnsealFailed = errors.New("unseal wallet secret failed")

// Sealer encrypts secret material for storage. The phone number is bound as
// associated data so a sealed value cannot be moved to another row.
type Sealer struct {
	key []byte
}

// NewSealer derives the sealing key from master with HKDF-SHA256.
func NewSealer(master []byte) (*Sealer, error) {
	if len(master) < 32 {
		return nil, fmt.Errorf("sealing key must be at least 32 bytes")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(sealInfo)), key); err != nil {
		return nil, fmt.Errorf("derive sealing key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal returns version || nonce || ciphertext.
func (s *Sealer) Seal(plaintext []byte, phone string) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, sealVersion)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, []byte(phone)), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed []byte, phone string) ([]byte, error) {
	if len(sealed) < 1+chacha20poly1305.NonceSizeX || sealed[0] != sealVersion {
		return nil, ErrUnsealFailed
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := sealed[1 : 1+chacha20poly1305.NonceSizeX]
	plaintext, err := aead.Open(nil, nonce, sealed[1+chacha20poly1305.NonceSizeX:], []byte(phone))
	if err != nil {
		return nil, ErrUnsealFailed
	}
	return plaintext, nil
}
