package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/phonomorph/phonomorph/internal/auth"
	"github.com/phonomorph/phonomorph/internal/identity"
)

const identityLocal = "identity"

// Verifier turns a session token into a verified phone number.
type Verifier interface {
	Verify(token string) (identity.Phone, error)
}

// Session requires a bearer session token and stores the verified phone
// number on the request.
func Session(verifier Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return auth.ErrUnauthorized
		}
		token := strings.TrimSpace(authz[len("Bearer "):])
		if token == "" {
			return auth.ErrUnauthorized
		}
		phone, err := verifier.Verify(token)
		if err != nil {
			return err
		}
		c.Locals(identityLocal, phone)
		return c.Next()
	}
}

// IdentityFromCtx returns the phone stored by Session.
func IdentityFromCtx(c *fiber.Ctx) (identity.Phone, error) {
	phone, ok := c.Locals(identityLocal).(identity.Phone)
	if !ok || phone == "" {
		return "", auth.ErrUnauthorized
	}
	return phone, nil
}
