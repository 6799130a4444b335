package routes

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/phonomorph/phonomorph/internal/auth"
	"github.com/phonomorph/phonomorph/internal/identity"
	"github.com/phonomorph/phonomorph/internal/middleware"
	"github.com/phonomorph/phonomorph/internal/payments"
	"github.com/phonomorph/phonomorph/internal/wallet"
)

type errorKind struct {
	target error
	status int
	kind   string
}

// errorKinds maps domain errors to a stable kind. Order matters: the first
// match wins.
var errorKinds = []errorKind{
	{payments.ErrInvalidRecipient, http.StatusBadRequest, "InvalidRecipient"},
	{payments.ErrInvalidAmount, http.StatusBadRequest, "InvalidAmount"},
	{payments.ErrSelfTransferDenied, http.StatusBadRequest, "SelfTransferDenied"},
	{payments.ErrInsufficientFeeBalance, http.StatusBadRequest, "InsufficientFeeBalance"},
	{payments.ErrSenderWalletNotFound, http.StatusNotFound, "SenderWalletNotFound"},
	{payments.ErrRecipientWalletNotFound, http.StatusNotFound, "RecipientWalletNotFound"},
	{payments.ErrSubmissionFailed, http.StatusInternalServerError, "SubmissionFailed"},
	{wallet.ErrInvalidSecret, http.StatusBadRequest, "InvalidSecret"},
	{wallet.ErrAlreadyExists, http.StatusBadRequest, "AlreadyExists"},
	{wallet.ErrNotFound, http.StatusNotFound, "NotFound"},
	{identity.ErrInvalidPhone, http.StatusBadRequest, "InvalidIdentity"},
	{auth.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{middleware.ErrRateLimited, http.StatusTooManyRequests, "RateLimited"},
}

// ErrorHandler renders every error as {"error": kind, "message": reason}.
// Errors with no known kind are logged and reported as Internal without
// their detail.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		for _, k := range errorKinds {
			if !errors.Is(err, k.target) {
				continue
			}
			body := fiber.Map{"error": k.kind, "message": k.target.Error()}
			if k.status == http.StatusBadRequest {
				body["message"] = err.Error()
			}
			var feeErr *payments.InsufficientFeeError
			if errors.As(err, &feeErr) {
				body["balance"] = feeErr.Balance.String()
				body["required"] = feeErr.Required.String()
				body["shortfall"] = feeErr.Shortfall.String()
			}
			if k.status >= http.StatusInternalServerError {
				logger.Error("request failed", slog.String("kind", k.kind), slog.String("path", c.Path()), slog.Any("error", err))
			}
			return c.Status(k.status).JSON(body)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": statusKind(fe.Code), "message": fe.Message})
		}

		logger.Error("request failed", slog.String("kind", "Internal"), slog.String("path", c.Path()), slog.Any("error", err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal", "message": "internal error"})
	}
}

func statusKind(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "BadRequest"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusNotFound:
		return "NotFound"
	case http.StatusMethodNotAllowed:
		return "MethodNotAllowed"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusTooManyRequests:
		return "RateLimited"
	default:
		if code >= http.StatusInternalServerError {
			return "Internal"
		}
		return http.StatusText(code)
	}
}
