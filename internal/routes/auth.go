package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/phonomorph/phonomorph/internal/auth"
)

// RegisterAuthRoutes wires the development session endpoint.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler) {
	group := r.Group("/auth")
	group.Post("/mock-session", h.MockSession)
}
