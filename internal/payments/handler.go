package payments

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/phonomorph/phonomorph/internal/identity"
)

// Handler exposes payment endpoints.
type Handler struct {
	service  *Service
	identity func(c *fiber.Ctx) (identity.Phone, error)
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service, identity func(c *fiber.Ctx) (identity.Phone, error)) *Handler {
	return &Handler{service: service, identity: identity}
}

type transferRequest struct {
	Recipient string          `json:"recipient"`
	Amount    json.RawMessage `json:"amount"`
}

// Transfer sends tokens from the caller's wallet to the recipient's.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	caller, err := h.identity(c)
	if err != nil {
		return err
	}
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	receipt, err := h.service.Transfer(c.UserContext(), TransferInput{
		Caller:    caller,
		Recipient: req.Recipient,
		Amount:    amountText(req.Amount),
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transaction_hash":  receipt.TransactionHash.Hex(),
		"recipient_address": receipt.RecipientAddress.Hex(),
		"status":            "submitted",
	})
}

// amountText accepts the amount as a JSON string or number.
func amountText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	return string(raw)
}
