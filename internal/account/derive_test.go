package account

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// Widely published development phrase and its first account.
	devMnemonic   = "test test test test test test test test test test test junk"
	devAddress    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	devPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

func TestFromMnemonicKnownVector(t *testing.T) {
	addr, err := FromMnemonic(devMnemonic)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if addr.Hex() != devAddress {
		t.Fatalf("expected %s, got %s", devAddress, addr.Hex())
	}
}

func TestFromMnemonicDeterministic(t *testing.T) {
	phrase, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	first, err := FromMnemonic(phrase)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	second, err := FromMnemonic(phrase)
	if err != nil {
		t.Fatalf("derive again: %v", err)
	}
	if first != second {
		t.Fatalf("derivation not deterministic: %s vs %s", first.Hex(), second.Hex())
	}
}

func TestFromMnemonicNormalizesWhitespaceAndCase(t *testing.T) {
	addr, err := FromMnemonic("  TEST test\ttest test test test test test test test test   junk\n")
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if addr.Hex() != devAddress {
		t.Fatalf("expected %s, got %s", devAddress, addr.Hex())
	}
}

func TestFromMnemonicWordCountBoundary(t *testing.T) {
	valid24 := strings.TrimSpace(strings.Repeat("abandon ", 23)) + " art"
	if _, err := FromMnemonic(valid24); err != nil {
		t.Fatalf("expected 24-word phrase to be accepted: %v", err)
	}

	valid12 := strings.TrimSpace(strings.Repeat("abandon ", 11)) + " about"
	if _, err := FromMnemonic(valid12); err != nil {
		t.Fatalf("expected 12-word phrase to be accepted: %v", err)
	}

	// 15 words is valid BIP-39 but not accepted here.
	valid15 := strings.TrimSpace(strings.Repeat("abandon ", 14)) + " address"
	for _, n := range []int{0, 1, 11, 13, 15, 18, 21, 23, 25} {
		words := strings.TrimSpace(strings.Repeat("abandon ", n))
		if n == 15 {
			words = valid15
		}
		if _, err := FromMnemonic(words); !errors.Is(err, ErrInvalidMnemonic) {
			t.Fatalf("expected %d words to be rejected, got %v", n, err)
		}
	}
}

func TestFromMnemonicRejectsBadChecksum(t *testing.T) {
	bad := strings.TrimSpace(strings.Repeat("abandon ", 12))
	if _, err := FromMnemonic(bad); !errors.Is(err, ErrInvalidMnemonic) {
		t.Fatalf("expected checksum failure, got %v", err)
	}
	unknown := strings.Replace(devMnemonic, "junk", "zzzz", 1)
	if _, err := FromMnemonic(unknown); !errors.Is(err, ErrInvalidMnemonic) {
		t.Fatalf("expected unknown word failure, got %v", err)
	}
}

func TestGenerateMnemonicShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 8; i++ {
		phrase, err := GenerateMnemonic()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if n := len(strings.Fields(phrase)); n != 12 {
			t.Fatalf("expected 12 words, got %d", n)
		}
		if _, err := NormalizeMnemonic(phrase); err != nil {
			t.Fatalf("generated phrase invalid: %v", err)
		}
		if _, dup := seen[phrase]; dup {
			t.Fatalf("duplicate phrase generated")
		}
		seen[phrase] = struct{}{}
	}
}

func TestFromPrivateKeyBoundary(t *testing.T) {
	for _, raw := range []string{devPrivateKey, "0x" + devPrivateKey, strings.ToUpper(devPrivateKey)} {
		addr, err := FromPrivateKey(raw)
		if err != nil {
			t.Fatalf("expected %q to derive: %v", raw, err)
		}
		if addr.Hex() != devAddress {
			t.Fatalf("expected %s, got %s", devAddress, addr.Hex())
		}
	}

	invalid := []string{
		devPrivateKey[:63],
		devPrivateKey + "0",
		"0x" + devPrivateKey[:63],
		devPrivateKey[:63] + "g",
		"",
		strings.Repeat("0", 64),
		strings.Repeat("f", 64),
	}
	for _, raw := range invalid {
		if _, err := FromPrivateKey(raw); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("expected %q to be rejected, got %v", raw, err)
		}
	}
}

func TestSecretDetectsKind(t *testing.T) {
	s, addr, err := NewSecret("", devMnemonic)
	if err != nil {
		t.Fatalf("mnemonic secret: %v", err)
	}
	if s.Kind != KindMnemonic || addr.Hex() != devAddress {
		t.Fatalf("unexpected mnemonic secret %v %s", s, addr.Hex())
	}

	s, addr, err = NewSecret("", "0x"+devPrivateKey)
	if err != nil {
		t.Fatalf("key secret: %v", err)
	}
	if s.Kind != KindPrivateKey || s.Value != devPrivateKey || addr.Hex() != devAddress {
		t.Fatalf("unexpected key secret %v %s", s, addr.Hex())
	}
}

func TestSecretSigningKeyMatchesAddress(t *testing.T) {
	s, addr, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	key, err := s.SigningKey()
	if err != nil {
		t.Fatalf("signing key: %v", err)
	}
	if crypto.PubkeyToAddress(key.PublicKey) != addr {
		t.Fatalf("signing key does not match address")
	}
}

func TestSecretFormattingHidesValue(t *testing.T) {
	s := Secret{Kind: KindPrivateKey, Value: devPrivateKey}
	for _, out := range []string{fmt.Sprint(s), fmt.Sprintf("%v", s), fmt.Sprintf("%#v", s), fmt.Sprintf("%+v", s)} {
		if strings.Contains(out, devPrivateKey) {
			t.Fatalf("secret leaked through formatting: %s", out)
		}
	}
}
