package payments

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRecipient        = errors.New("recipient must be a phone number in international format")
	ErrInvalidAmount           = errors.New("amount must be a positive decimal")
	ErrSelfTransferDenied      = errors.New("cannot transfer to yourself")
	ErrSenderWalletNotFound    = errors.New("sender has no wallet")
	ErrRecipientWalletNotFound = errors.New("recipient has no wallet")
	ErrInsufficientFeeBalance  = errors.New("insufficient fee balance")
	ErrSubmissionFailed        = errors.New("transfer submission failed")
	ErrUnavailable             = errors.New("transfer temporarily unavailable")
)

// InsufficientFeeError reports how much native currency the sender lacks.
type InsufficientFeeError struct {
	Balance   decimal.Decimal
	Required  decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientFeeError) Error() string {
	return fmt.Sprintf("%s: balance %s, required %s, short by %s",
		ErrInsufficientFeeBalance, e.Balance, e.Required, e.Shortfall)
}

// Is makes errors.Is(err, ErrInsufficientFeeBalance) match.
func (e *InsufficientFeeError) Is(target error) bool {
	return target == ErrInsufficientFeeBalance
}

// outcome names the error kind for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "submitted"
	case errors.Is(err, ErrInvalidRecipient):
		return "invalid_recipient"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrSelfTransferDenied):
		return "self_transfer_denied"
	case errors.Is(err, ErrSenderWalletNotFound):
		return "sender_wallet_not_found"
	case errors.Is(err, ErrRecipientWalletNotFound):
		return "recipient_wallet_not_found"
	case errors.Is(err, ErrInsufficientFeeBalance):
		return "insufficient_fee_balance"
	case errors.Is(err, ErrSubmissionFailed):
		return "submission_failed"
	default:
		return "unavailable"
	}
}
