package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/phonomorph/phonomorph/internal/identity"
)

// ErrUnauthorized is returned for any token that does not identify a phone.
var ErrUnauthorized = errors.New("unauthorized")

// Claims carries the verified phone number in the subject.
type Claims struct {
	jwt.RegisteredClaims
}

// Authority verifies session tokens and, for development, mints them.
type Authority struct {
	secret   []byte
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthority constructs an HS256 session authority.
func NewAuthority(secret, audience string, ttl time.Duration) (*Authority, error) {
	if secret == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Authority{secret: []byte(secret), audience: audience, ttl: ttl, now: time.Now}, nil
}

// Issue mints a session token for phone.
func (a *Authority) Issue(phone identity.Phone) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   phone.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	if a.audience != "" {
		claims.Audience = jwt.ClaimStrings{a.audience}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, expiry and audience and returns the phone held in
// the subject.
func (a *Authority) Verify(token string) (identity.Phone, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.audience != "" {
		opts = append(opts, jwt.WithAudience(a.audience))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	phone, err := identity.ParsePhone(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: subject is not a phone number", ErrUnauthorized)
	}
	return phone, nil
}
