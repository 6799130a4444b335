package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/phonomorph/phonomorph/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallet", h.Provision)
	r.Post("/wallet/import", h.Import)
	r.Get("/wallet", h.Get)
	r.Get("/wallet/balance", h.Balance)
}
