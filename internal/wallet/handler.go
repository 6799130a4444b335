package wallet

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/phonomorph/phonomorph/internal/account"
	"github.com/phonomorph/phonomorph/internal/identity"
)

// IdentityFunc extracts the authenticated phone number from a request.
type IdentityFunc func(c *fiber.Ctx) (identity.Phone, error)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service  *Service
	identity IdentityFunc
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service, identity IdentityFunc) *Handler {
	return &Handler{service: service, identity: identity}
}

type importRequest struct {
	Secret string `json:"secret"`
	Kind   string `json:"kind"`
}

type walletResponse struct {
	Address string `json:"address"`
}

type balanceResponse struct {
	Address      string `json:"address"`
	FeeBalance   string `json:"fee_balance"`
	TokenBalance string `json:"token_balance"`
	AsOf         string `json:"as_of"`
}

// Provision creates a wallet for the authenticated phone.
func (h *Handler) Provision(c *fiber.Ctx) error {
	phone, err := h.identity(c)
	if err != nil {
		return err
	}
	record, err := h.service.Provision(c.UserContext(), phone)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(walletResponse{Address: record.Address.Hex()})
}

// Import stores an externally supplied mnemonic or private key.
func (h *Handler) Import(c *fiber.Ctx) error {
	phone, err := h.identity(c)
	if err != nil {
		return err
	}
	var req importRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	kind, err := account.ParseKind(req.Kind)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	record, err := h.service.Import(c.UserContext(), phone, ImportInput{Kind: kind, Secret: req.Secret})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(walletResponse{Address: record.Address.Hex()})
}

// Get returns the authenticated phone's wallet address.
func (h *Handler) Get(c *fiber.Ctx) error {
	phone, err := h.identity(c)
	if err != nil {
		return err
	}
	record, err := h.service.Get(c.UserContext(), phone)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(walletResponse{Address: record.Address.Hex()})
}

// Balance returns fee-currency and token balances.
func (h *Handler) Balance(c *fiber.Ctx) error {
	phone, err := h.identity(c)
	if err != nil {
		return err
	}
	bal, err := h.service.Balance(c.UserContext(), phone)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(balanceResponse{
		Address:      bal.Address.Hex(),
		FeeBalance:   bal.FeeBalance.String(),
		TokenBalance: bal.TokenBalance.String(),
		AsOf:         bal.AsOf.Format(time.RFC3339Nano),
	})
}
