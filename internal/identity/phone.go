package identity

import (
	"errors"
	"strings"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// ErrInvalidPhone is returned when a value is not an international phone number.
var ErrInvalidPhone = errors.New("phone number must be '+' followed by 10 to 15 digits")

// Phone is a verified-format international phone number, the sole handle
// for a custodial wallet.
type Phone string

// ParsePhone validates raw as "+" followed by 10–15 digits. Surrounding
// whitespace is ignored; nothing else is normalised.
func ParsePhone(raw string) (Phone, error) {
	s := strings.TrimSpace(raw)
	if len(s) < minPhoneDigits+1 || len(s) > maxPhoneDigits+1 || s[0] != '+' {
		return "", ErrInvalidPhone
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}
	return Phone(s), nil
}

// String returns the phone number.
func (p Phone) String() string {
	return string(p)
}

// Masked hides the middle digits for log output.
func (p Phone) Masked() string {
	s := string(p)
	if len(s) < 7 {
		return "****"
	}
	return s[:5] + strings.Repeat("*", len(s)-7) + s[len(s)-2:]
}
