package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/phonomorph/phonomorph/internal/identity"
)

// Handler exposes the development session endpoint.
type Handler struct {
	authority *Authority
}

// NewHandler constructs an auth handler.
func NewHandler(authority *Authority) *Handler {
	return &Handler{authority: authority}
}

type mockSessionRequest struct {
	Phone string `json:"phone"`
}

// MockSession mints a session for any well-formed phone number. It stands in
// for the external verification provider and is only mounted in development.
func (h *Handler) MockSession(c *fiber.Ctx) error {
	var req mockSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	phone, err := identity.ParsePhone(req.Phone)
	if err != nil {
		return err
	}
	token, exp, err := h.authority.Issue(phone)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"session_token": token,
		"expires_at":    exp.UTC(),
		"phone":         phone.String(),
	})
}
