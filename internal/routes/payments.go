package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/phonomorph/phonomorph/internal/payments"
)

// RegisterPaymentRoutes wires payment endpoints.
func RegisterPaymentRoutes(r fiber.Router, h *payments.Handler, rateLimiter fiber.Handler) {
	if rateLimiter != nil {
		r.Post("/transfers", rateLimiter, h.Transfer)
		return
	}
	r.Post("/transfers", h.Transfer)
}
