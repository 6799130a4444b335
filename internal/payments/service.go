package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/phonomorph/phonomorph/internal/identity"
	"github.com/phonomorph/phonomorph/internal/ledger"
	"github.com/phonomorph/phonomorph/internal/logging"
	"github.com/phonomorph/phonomorph/internal/metrics"
	"github.com/phonomorph/phonomorph/internal/notification"
	"github.com/phonomorph/phonomorph/internal/wallet"
)

// maxAmountLen bounds the textual amount; a uint256 with full token
// precision fits well within it.
const maxAmountLen = 100

// Wallets resolves phone numbers to custodial wallet records.
type Wallets interface {
	Lookup(ctx context.Context, phone identity.Phone) (wallet.Record, error)
}

// Config holds transfer policy.
type Config struct {
	Token         common.Address
	TokenDecimals int32
	// MinFeeBalance is the native balance a sender must hold before a
	// transfer is submitted.
	MinFeeBalance decimal.Decimal
}

// Service moves tokens between the custodial wallets of two phone numbers.
type Service struct {
	wallets  Wallets
	ledger   ledger.Gateway
	notifier notification.Notifier
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewService constructs a payment service.
func NewService(wallets Wallets, gateway ledger.Gateway, notifier notification.Notifier, cfg Config, logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{wallets: wallets, ledger: gateway, notifier: notifier, cfg: cfg, logger: logger, metrics: m}
}

// TransferInput captures one transfer request.
type TransferInput struct {
	Caller    identity.Phone
	Recipient string
	Amount    string
}

// Receipt acknowledges that the transfer was broadcast. It does not mean
// the transaction has been mined.
type Receipt struct {
	TransactionHash  common.Hash
	RecipientAddress common.Address
}

// Transfer validates the request, resolves both wallets, checks the sender
// can pay for gas and submits the token transfer. Submission is the only
// external mutation; every earlier failure leaves no trace.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (receipt Receipt, err error) {
	defer func() {
		s.metrics.TransferOutcome(outcome(err))
	}()

	recipient, err := identity.ParsePhone(input.Recipient)
	if err != nil {
		return Receipt{}, ErrInvalidRecipient
	}
	amount, err := s.parseAmount(input.Amount)
	if err != nil {
		return Receipt{}, err
	}
	if input.Caller == recipient {
		return Receipt{}, ErrSelfTransferDenied
	}

	sender, err := s.wallets.Lookup(ctx, input.Caller)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return Receipt{}, ErrSenderWalletNotFound
		}
		return Receipt{}, s.unavailable("sender lookup", err)
	}
	target, err := s.wallets.Lookup(ctx, recipient)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			return Receipt{}, ErrRecipientWalletNotFound
		}
		return Receipt{}, s.unavailable("recipient lookup", err)
	}

	feeBalance, err := s.ledger.FeeBalance(ctx, sender.Address)
	if err != nil {
		return Receipt{}, s.unavailable("fee balance", err)
	}
	if feeBalance.LessThan(s.cfg.MinFeeBalance) {
		return Receipt{}, &InsufficientFeeError{
			Balance:   feeBalance,
			Required:  s.cfg.MinFeeBalance,
			Shortfall: s.cfg.MinFeeBalance.Sub(feeBalance),
		}
	}

	hash, err := s.submit(ctx, sender, target.Address, amount)
	if err != nil {
		s.logger.Warn("transfer submission failed",
			slog.String("from", input.Caller.Masked()),
			slog.String("to", recipient.Masked()),
			slog.Any("error", err),
		)
		return Receipt{}, fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}

	s.logger.Info("transfer submitted",
		slog.String("from", input.Caller.Masked()),
		slog.String("to", recipient.Masked()),
		slog.String("amount", amount.String()),
		slog.String("tx_hash", hash.Hex()),
	)

	if s.notifier != nil {
		if nerr := s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransferSubmitted,
			Destination: recipient.String(),
			Body:        fmt.Sprintf("%s is sending you %s", input.Caller.Masked(), amount.String()),
			Reference:   hash.Hex(),
		}); nerr != nil {
			s.logger.Warn("transfer notification failed", slog.String("tx_hash", hash.Hex()), slog.Any("error", nerr))
		}
	}

	return Receipt{TransactionHash: hash, RecipientAddress: target.Address}, nil
}

// submit derives the signing key and hands it to the gateway. The key does
// not outlive this call.
func (s *Service) submit(ctx context.Context, sender wallet.Record, to common.Address, amount decimal.Decimal) (common.Hash, error) {
	key, err := sender.Secret.SigningKey()
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing key: %w", err)
	}
	return s.ledger.SubmitTransfer(ctx, key, s.cfg.Token, to, amount)
}

// parseAmount accepts a positive decimal with no more fractional digits than
// the token supports and no more base units than a uint256 holds.
func (s *Service) parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > maxAmountLen {
		return decimal.Zero, fmt.Errorf("%w: too long", ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if _, err := ledger.ToBaseUnits(amount, s.cfg.TokenDecimals); err != nil {
		return decimal.Zero, fmt.Errorf("%w (%v)", ErrInvalidAmount, err)
	}
	return amount, nil
}

func (s *Service) unavailable(step string, err error) error {
	s.logger.Error("transfer dependency failed", slog.String("step", step), slog.Any("error", err))
	return fmt.Errorf("%w: %s", ErrUnavailable, step)
}
